package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// VoiceForm captures the subset of Twilio voice webhook fields the flow
// consumes. Twilio sends application/x-www-form-urlencoded by default.
//
// Keep it boundary-only: no flow decisions are made here.

type VoiceForm struct {
	CallSid string
	From    string
	To      string

	// Digits arrives on the gather action callback.
	Digits string

	// DialCallStatus arrives on dial completion callbacks.
	DialCallStatus string

	// CallStatus and CallDuration arrive on the final status callback.
	CallStatus   string
	CallDuration string

	// Body arrives on inbound SMS.
	Body string

	// ParentSid is our own query parameter: callbacks that execute on a
	// dialed party carry the original call's sid here, because the
	// dialed leg has a CallSid of its own.
	ParentSid string
}

// SID returns the identifier of the inbound call this event belongs to.
func (f VoiceForm) SID() string {
	if f.ParentSid != "" {
		return f.ParentSid
	}
	return f.CallSid
}

var errMissingCallSid = errors.New("telephony: webhook carries no call sid")

// ParseVoiceForm reads the webhook form. Events with no resolvable call
// identifier are rejected before any flow code runs.
func ParseVoiceForm(r *http.Request) (VoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceForm{}, err
	}
	f := VoiceForm{
		CallSid:        r.PostFormValue("CallSid"),
		From:           strings.TrimSpace(r.PostFormValue("From")),
		To:             strings.TrimSpace(r.PostFormValue("To")),
		Digits:         r.PostFormValue("Digits"),
		DialCallStatus: r.PostFormValue("DialCallStatus"),
		CallStatus:     r.PostFormValue("CallStatus"),
		CallDuration:   r.PostFormValue("CallDuration"),
		Body:           r.PostFormValue("Body"),
		ParentSid:      r.URL.Query().Get("parent_sid"),
	}
	if f.SID() == "" {
		return VoiceForm{}, errMissingCallSid
	}
	return f, nil
}

var basicPhoneRe = regexp.MustCompile(`^\+[0-9]+$`)

// ValidPhone reports whether s looks like a bare E.164 number. The
// status callback checks this before the number lands in an email
// subject header.
func ValidPhone(s string) bool {
	return basicPhoneRe.MatchString(s)
}

// ValidateSignature checks the X-Twilio-Signature header: base64 of
// HMAC-SHA1 over the full request URL with the sorted POST parameters
// appended as key-value pairs.
// Ref: https://www.twilio.com/docs/usage/security#validating-requests
func ValidateSignature(authToken, fullURL string, form url.Values, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}
