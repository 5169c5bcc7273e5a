package domain

// SpokenResponse is what a handler wants said back to the user.
// The zero value is the empty response.
type SpokenResponse struct {
	Utterance       string
	KeepSessionOpen bool
}

// IsEmpty reports whether there is nothing to speak.
func (r SpokenResponse) IsEmpty() bool {
	return r.Utterance == ""
}
