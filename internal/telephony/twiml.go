package telephony

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"launch-line/internal/callflow"
)

// The flow's verb sequence maps one-to-one onto TwiML verbs here and
// nowhere else.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlPlay struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlGather struct {
	XMLName   xml.Name `xml:"Gather"`
	Action    string   `xml:"action,attr"`
	Timeout   int      `xml:"timeout,attr"`
	NumDigits int      `xml:"numDigits,attr"`
	Verbs     []any    `xml:",any"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

type twimlDial struct {
	XMLName  xml.Name     `xml:"Dial"`
	Action   string       `xml:"action,attr,omitempty"`
	CallerID string       `xml:"callerId,attr,omitempty"`
	Number   *twimlNumber `xml:"Number,omitempty"`
}

type twimlNumber struct {
	URL    string `xml:"url,attr,omitempty"`
	Number string `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// RenderTwiML maps a verb sequence to a TwiML document. An empty
// sequence renders a bare <Response/>, which tells the provider to do
// nothing (used by pickup notification callbacks).
func RenderTwiML(verbs []callflow.Verb) (string, error) {
	var r twimlResponse
	for _, v := range verbs {
		node, err := twimlNode(v)
		if err != nil {
			return "", err
		}
		r.Verbs = append(r.Verbs, node)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func twimlNode(v callflow.Verb) (any, error) {
	switch v := v.(type) {
	case callflow.Play:
		return twimlPlay{URL: v.URL}, nil
	case callflow.Say:
		return twimlSay{Text: v.Text}, nil
	case callflow.Pause:
		return twimlPause{Length: v.Seconds}, nil
	case callflow.Gather:
		g := twimlGather{Action: v.Action, Timeout: v.Timeout, NumDigits: v.NumDigits}
		for _, p := range v.Prompt {
			node, err := twimlNode(p)
			if err != nil {
				return nil, err
			}
			g.Verbs = append(g.Verbs, node)
		}
		return g, nil
	case callflow.Dial:
		if v.Number == "" {
			return nil, fmt.Errorf("telephony: dial verb requires a number")
		}
		return twimlDial{
			Action:   v.Action,
			CallerID: v.CallerID,
			Number:   &twimlNumber{URL: v.PickupURL, Number: v.Number},
		}, nil
	case callflow.Hangup:
		return twimlHangup{}, nil
	case callflow.Redirect:
		return twimlRedirect{URL: v.URL}, nil
	default:
		return nil, fmt.Errorf("telephony: unknown verb %T", v)
	}
}
