package http

import (
	"errors"
	"time"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message      string `json:"message" validate:"required"`
	SessionToken string `json:"session_token,omitempty" validate:"omitempty,max=128,printascii"`
}

// ChatResponse is the result of one turn.
type ChatResponse struct {
	Response     string         `json:"response"`
	SessionToken string         `json:"session_token"`
	State        domain.State   `json:"state"`
	Branch       domain.Branch  `json:"branch"`
	Context      domain.Summary `json:"context"`
	MessageCount int            `json:"message_count"`
}

func newChatResponse(r *domain.Reply) ChatResponse {
	return ChatResponse{
		Response:     r.Text,
		SessionToken: r.Token,
		State:        r.State,
		Branch:       r.Branch,
		Context:      r.Context,
		MessageCount: r.MessageCount,
	}
}

// SessionResponse is the body of GET /api/session/{token} and of a reset.
type SessionResponse struct {
	SessionToken string           `json:"session_token"`
	Messages     []domain.Message `json:"messages"`
	State        domain.State     `json:"state"`
	Branch       domain.Branch    `json:"branch"`
	Context      domain.Summary   `json:"context"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActivity time.Time        `json:"last_activity"`
}

func newSessionResponse(r *domain.Record) SessionResponse {
	return SessionResponse{
		SessionToken: r.Token,
		Messages:     r.Transcript,
		State:        r.State,
		Branch:       r.Branch,
		Context:      r.Context.Summary(),
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivityAt,
	}
}

// SessionsResponse is the body of GET /api/sessions.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status         string    `json:"status"`
	Version        string    `json:"version,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	ActiveSessions int       `json:"active_sessions"`
}

// ErrorResponse is returned for every non-2xx status.
// Response carries a user-facing sentence when the failure is a capability outage.
type ErrorResponse struct {
	Error    string `json:"error"`
	Response string `json:"response,omitempty"`
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Field() == "Message" && fe.Tag() == "required" {
			return "Message is required"
		}
		return "Invalid field " + fe.Field() + ": " + fe.Tag()
	}
	return "Invalid request"
}
