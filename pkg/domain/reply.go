package domain

// Reply is the outbound result of one turn.
type Reply struct {
	Token        string  `json:"token"`
	Text         string  `json:"response"`
	State        State   `json:"state"`
	Branch       Branch  `json:"branch"`
	Context      Summary `json:"context"`
	MessageCount int     `json:"message_count"`
}

// NewReply builds the reply for the record after a turn.
func NewReply(r *Record, text string) *Reply {
	return &Reply{
		Token:        r.Token,
		Text:         text,
		State:        r.State,
		Branch:       r.Branch,
		Context:      r.Context.Summary(),
		MessageCount: len(r.Transcript),
	}
}
