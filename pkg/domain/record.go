package domain

import (
	"fmt"
	"time"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is the durable snapshot of one session.
type Record struct {
	// Token is the immutable primary key.
	Token string `json:"token"`

	// Transcript is append-only for the life of the record.
	Transcript []Message `json:"transcript"`

	State   State        `json:"state"`
	Branch  Branch       `json:"branch"`
	Context ContextStore `json:"context"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewRecord creates a clean record at the Start node.
func NewRecord(token string, now time.Time) *Record {
	return &Record{
		Token:          token,
		Transcript:     []Message{},
		State:          StateStart,
		Branch:         BranchNone,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Snapshot returns a deep copy of the record.
func (r *Record) Snapshot() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Transcript = make([]Message, len(r.Transcript))
	copy(cp.Transcript, r.Transcript)
	return &cp
}

// Append adds a transcript entry.
func (r *Record) Append(role Role, text string, at time.Time) {
	r.Transcript = append(r.Transcript, Message{Role: role, Text: text, Timestamp: at})
}

// Touch updates the activity timestamp.
func (r *Record) Touch(now time.Time) {
	r.LastActivityAt = now
}

// Validate checks the structural invariants of the record.
func (r *Record) Validate() error {
	if r.Token == "" {
		return ErrMissingToken
	}
	if !r.Branch.Valid() {
		return fmt.Errorf("%w: unknown branch %q", ErrInvalidTransition, r.Branch)
	}
	if !r.State.ValidFor(r.Branch) {
		return fmt.Errorf("%w: state %q is not part of the %q graph", ErrInvalidTransition, r.State, r.Branch)
	}
	return nil
}
