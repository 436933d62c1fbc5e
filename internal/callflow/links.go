package callflow

import (
	"fmt"
	"net/url"
)

// Links builds the callback URLs baked into emitted verbs. The flow only
// decides which step comes next; where that step lives on the HTTP
// surface belongs to the transport layer, so the router installs the
// matching implementation.
type Links interface {
	Audio(name string) string

	Gathered() string
	GatherFailed() string

	HumanStep(seed int64, index int) string
	HumanPickup(seed int64, index int, parentSID string) string
	HumanEnded(seed int64, index int) string

	ForwardPickup(parentSID string) string
	ForwardEnded() string
}

// PathLinks emits the relative paths registered in cmd/api/routes.go.
// Relative URLs are resolved by the provider against the webhook host.
type PathLinks struct{}

func (PathLinks) Audio(name string) string {
	return "/static/audio/" + name
}

func (PathLinks) Gathered() string     { return "/call/gathered" }
func (PathLinks) GatherFailed() string { return "/call/gather_failed" }

func (PathLinks) HumanStep(seed int64, index int) string {
	return fmt.Sprintf("/call/human/%d/%d", seed, index)
}

func (PathLinks) HumanPickup(seed int64, index int, parentSID string) string {
	return fmt.Sprintf("/call/human/%d/%d/pickup?parent_sid=%s", seed, index, url.QueryEscape(parentSID))
}

func (PathLinks) HumanEnded(seed int64, index int) string {
	return fmt.Sprintf("/call/human/%d/%d/end", seed, index)
}

func (PathLinks) ForwardPickup(parentSID string) string {
	return "/call/forward/pickup?parent_sid=" + url.QueryEscape(parentSID)
}

func (PathLinks) ForwardEnded() string { return "/call/forward/ended" }
