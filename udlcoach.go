package udlcoach

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/adapters/extract"
	"github.com/aretw0/udlcoach/pkg/adapters/memory"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/aretw0/udlcoach/pkg/runner"
	"github.com/aretw0/udlcoach/pkg/session"
)

// Engine is the high-level entry point for the coach.
// It binds the dialogue orchestrator to the session manager and exposes the
// session-aware API used by every transport.
type Engine struct {
	manager  *session.Manager
	dialogue *dialogue.Engine

	repo         ports.SessionRepository
	locker       ports.DistributedLocker
	lockTTL      time.Duration
	classifier   ports.IntentClassifier
	generator    ports.ContentGenerator
	extractor    ports.DocumentExtractor
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
	token        func() string
	maxInputSize int
}

var _ ports.Coach = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClassifier sets the intent classifier backend.
func WithClassifier(c ports.IntentClassifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithGenerator sets the content generator backend.
func WithGenerator(g ports.ContentGenerator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithExtractor sets the document extractor used by Upload.
func WithExtractor(x ports.DocumentExtractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithRepository injects the session repository (default: in-memory).
func WithRepository(repo ports.SessionRepository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithLocker enables distributed per-token locking across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLockTTL sets the expiration of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTokenGenerator overrides how new session tokens are issued.
func WithTokenGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.token = gen
	}
}

// WithMaxInputSize bounds the size of a single message in bytes.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInputSize = n
	}
}

// New initializes a new Engine. Without WithClassifier/WithGenerator every
// turn that needs a backend fails with domain.ErrCapabilityUnavailable.
func New(opts ...Option) *Engine {
	eng := &Engine{
		classifier: unavailable{},
		generator:  unavailable{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.repo == nil {
		eng.repo = memory.NewStore()
	}
	if eng.extractor == nil {
		eng.extractor = extract.New(extract.WithMaxTextSize(eng.maxInputSize))
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithClock(eng.now),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker), session.WithLockTTL(eng.lockTTL))
	}
	if eng.token != nil {
		sessionOpts = append(sessionOpts, session.WithTokenGenerator(eng.token))
	}
	eng.manager = session.NewManager(eng.repo, sessionOpts...)

	eng.dialogue = dialogue.NewEngine(eng.classifier, eng.generator,
		dialogue.WithLifecycleHooks(eng.hooks),
		dialogue.WithLogger(eng.logger),
		dialogue.WithClock(eng.now),
	)
	return eng
}

// Send runs one turn for token. An empty token starts a new session with a
// freshly issued token; an unknown token starts a new session under that token.
// On error the stored record is left untouched.
func (e *Engine) Send(ctx context.Context, token, message string) (*domain.Reply, error) {
	clean, err := runner.SanitizeInputLimit(message, e.maxInputSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(clean) == "" {
		return nil, domain.ErrEmptyMessage
	}

	token = strings.TrimSpace(token)
	if token == "" {
		token = e.manager.NewToken()
	}

	var text string
	rec, err := e.manager.Update(ctx, token, func(ctx context.Context, rec *domain.Record) error {
		next, reply, err := e.dialogue.Step(ctx, rec, clean)
		if err != nil {
			return err
		}
		*rec = *next
		text = reply
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("turn completed", "token", rec.Token, "state", rec.State, "branch", rec.Branch)
	return domain.NewReply(rec, text), nil
}

// Upload extracts the text of a document and runs it as a turn message.
func (e *Engine) Upload(ctx context.Context, token, name string, data []byte) (*domain.Reply, error) {
	start := time.Now()
	text, err := e.extractor.Extract(ctx, name, data)
	if e.hooks.OnCapability != nil {
		e.hooks.OnCapability(ctx, &domain.CapabilityEvent{
			EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventCapability, Token: token},
			Capability: "extract",
			Kind:       strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
			Duration:   time.Since(start),
			IsError:    err != nil,
		})
	}
	if err != nil {
		return nil, err
	}
	return e.Send(ctx, token, text)
}

// Reset atomically replaces the session with a fresh Start record.
func (e *Engine) Reset(ctx context.Context, token string) (*domain.Record, error) {
	rec, err := e.manager.Reset(ctx, token)
	if err != nil {
		return nil, err
	}
	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.EventBase{Timestamp: e.now(), Type: domain.EventReset, Token: token})
	}
	return rec, nil
}

// History returns the stored record for token.
func (e *Engine) History(ctx context.Context, token string) (*domain.Record, error) {
	return e.manager.Load(ctx, token)
}

// Sessions lists stored session tokens.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// Delete removes a session entirely.
func (e *Engine) Delete(ctx context.Context, token string) error {
	return e.manager.Delete(ctx, token)
}

// Repository returns the session repository backing the engine.
func (e *Engine) Repository() ports.SessionRepository {
	return e.repo
}

// unavailable is the default backend when none is configured.
type unavailable struct{}

func (unavailable) ClassifySlots(ctx context.Context, text string) (domain.SlotResult, error) {
	return domain.SlotResult{}, fmt.Errorf("%w: no classifier configured", domain.ErrCapabilityUnavailable)
}

func (unavailable) ClassifyAlignment(ctx context.Context, assessment string) (domain.Alignment, error) {
	return "", fmt.Errorf("%w: no classifier configured", domain.ErrCapabilityUnavailable)
}

func (unavailable) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	return "", fmt.Errorf("%w: no generator configured", domain.ErrCapabilityUnavailable)
}
