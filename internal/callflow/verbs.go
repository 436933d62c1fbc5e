package callflow

// Verb is one abstract call-control instruction. The flow emits verb
// sequences; the telephony adapter renders them to the provider's wire
// format. No provider types leak in here.
type Verb interface{ verb() }

// Play plays a prerecorded audio resource.
type Play struct{ URL string }

// Say speaks text with the provider's TTS voice.
type Say struct{ Text string }

// Pause waits for the given number of seconds.
type Pause struct{ Seconds int }

// Gather collects exactly NumDigits keypresses within Timeout seconds
// while playing Prompt. The provider posts the digits to Action; on
// timeout it falls through to whatever verb follows the Gather.
type Gather struct {
	Action    string
	Timeout   int
	NumDigits int
	Prompt    []Verb
}

// Dial places an outbound call leg and waits for its outcome.
// PickupURL runs on the dialed party before the legs are bridged; Action
// receives the completion callback with the dial status.
type Dial struct {
	Number    string
	CallerID  string
	Action    string
	PickupURL string
}

// Hangup ends the call.
type Hangup struct{}

// Redirect hands control to another callback URL.
type Redirect struct{ URL string }

func (Play) verb()     {}
func (Say) verb()      {}
func (Pause) verb()    {}
func (Gather) verb()   {}
func (Dial) verb()     {}
func (Hangup) verb()   {}
func (Redirect) verb() {}
