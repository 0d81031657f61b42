package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// Commands understood by the chat loop. Anything else is sent as a turn.
const (
	CommandReset = "/reset"
	CommandExit  = "exit"
	CommandQuit  = "quit"
)

const (
	welcomeMessage     = "Type \"design\" to create a new assessment or \"evaluate\" to review one. Commands: /reset, exit."
	unavailableMessage = "The assistant is temporarily unavailable. Your conversation is unchanged, please try again."
)

// Runner drives a chat session over a Coach using an IOHandler.
type Runner struct {
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Headless suppresses the welcome and resume notices.
	Headless bool
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHeadless sets the runner to headless mode.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// NewRunner creates a Runner. Without a handler it uses text IO on Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run reads messages until the input ends, the user exits or ctx is canceled.
// It returns the session token in use when the loop stopped. An empty token
// lets the coach issue one on the first turn.
func (r *Runner) Run(ctx context.Context, coach ports.Coach, token string) (string, error) {
	if err := r.greet(ctx, coach, token); err != nil {
		return token, err
	}

	for {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return token, nil
			}
			if ctx.Err() != nil {
				r.Logger.Debug("runner input: context canceled", "err", ctx.Err())
				return token, ctx.Err()
			}
			return token, fmt.Errorf("input error: %w", err)
		}

		command := strings.ToLower(strings.TrimSpace(text))
		switch command {
		case "":
			continue
		case CommandExit, CommandQuit:
			return token, nil
		case CommandReset:
			if err := r.reset(ctx, coach, token); err != nil {
				return token, err
			}
			continue
		}

		reply, err := coach.Send(ctx, token, text)
		if err != nil {
			if handled := r.turnError(ctx, err); handled {
				continue
			}
			return token, err
		}
		token = reply.Token
		r.Logger.Debug("turn", "token", token, "state", reply.State, "branch", reply.Branch)

		if err := r.Handler.Output(ctx, reply); err != nil {
			return token, fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) greet(ctx context.Context, coach ports.Coach, token string) error {
	if r.Headless {
		return nil
	}
	if token != "" {
		rec, err := coach.History(ctx, token)
		switch {
		case err == nil:
			return r.Handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s (%s, %d messages).", token, rec.State, len(rec.Transcript)))
		case !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("failed to load session %s: %w", token, err)
		}
	}
	return r.Handler.SystemOutput(ctx, welcomeMessage)
}

func (r *Runner) reset(ctx context.Context, coach ports.Coach, token string) error {
	if token == "" {
		return r.Handler.SystemOutput(ctx, "Nothing to reset yet.")
	}
	if _, err := coach.Reset(ctx, token); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return r.Handler.SystemOutput(ctx, "Nothing to reset yet.")
		}
		return fmt.Errorf("reset failed: %w", err)
	}
	return r.Handler.SystemOutput(ctx, "Session reset. "+welcomeMessage)
}

// turnError reports recoverable turn failures to the user.
func (r *Runner) turnError(ctx context.Context, err error) bool {
	var msg string
	switch {
	case ctx.Err() != nil:
		return false
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		r.Logger.Warn("turn failed", "err", err)
		msg = unavailableMessage
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyMessage):
		msg = fmt.Sprintf("Error: %v. Please try again.", err)
	default:
		return false
	}
	if outErr := r.Handler.SystemOutput(ctx, msg); outErr != nil {
		r.Logger.Error("failed to write system output", "err", outErr)
	}
	return true
}
