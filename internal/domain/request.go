package domain

import "strings"

// RequestKind is the voice-platform request type.
type RequestKind string

const (
	RequestLaunch       RequestKind = "LaunchRequest"
	RequestIntent       RequestKind = "IntentRequest"
	RequestSessionEnded RequestKind = "SessionEndedRequest"
)

// Request is the platform-agnostic shape of one inbound voice request.
// IntentName and Slots are only populated for RequestIntent.
type Request struct {
	Kind       RequestKind
	IntentName string
	Slots      map[string]string
}

// Slot returns the trimmed value of the named slot and whether it was filled.
func (r Request) Slot(name string) (string, bool) {
	v, ok := r.Slots[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// IsIntent reports whether r is an intent request for one of names.
func (r Request) IsIntent(names ...string) bool {
	if r.Kind != RequestIntent {
		return false
	}
	for _, n := range names {
		if r.IntentName == n {
			return true
		}
	}
	return false
}
