package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// Engine is the dialogue orchestrator: given a record and an inbound message
// it computes the next state, branch and context and the outbound message.
// All non-determinism lives behind the classifier and generator ports.
type Engine struct {
	classifier ports.IntentClassifier
	generator  ports.ContentGenerator
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the transcript time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an orchestrator over the given capabilities.
func NewEngine(classifier ports.IntentClassifier, generator ports.ContentGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		classifier: classifier,
		generator:  generator,
		logger:     logging.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step executes one turn. It never mutates current: it returns the next
// record (with the user message and exactly one assistant message appended)
// and the outbound text. On error no record is returned, so the caller keeps
// the previous one and a retry re-enters the same state.
func (e *Engine) Step(ctx context.Context, current *domain.Record, message string) (*domain.Record, string, error) {
	if err := current.Validate(); err != nil {
		return nil, "", err
	}

	next := current.Snapshot()
	next.Append(domain.RoleUser, message, e.now())

	intent := domain.Classify(message)
	text, err := e.dispatch(ctx, next, intent, message)
	if err != nil {
		e.logger.Warn("turn failed", "token", current.Token, "state", current.State, "err", err)
		return nil, "", err
	}

	next.Append(domain.RoleAssistant, text, e.now())

	e.logger.Debug("transition",
		"token", next.Token,
		"from", current.State,
		"to", next.State,
		"branch", next.Branch,
		"intent", intent.String(),
	)
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventTransition, Token: next.Token},
			From:      current.State,
			To:        next.State,
			Branch:    next.Branch,
			Intent:    intent.String(),
		})
	}
	return next, text, nil
}

// dispatch applies the edge chosen by the table to rec.
func (e *Engine) dispatch(ctx context.Context, rec *domain.Record, intent domain.Intent, message string) (string, error) {
	t, err := Lookup(rec.State, intent)
	if err != nil {
		return "", err
	}

	switch t.Action {
	case ActPromptMode:
		rec.State = t.To
		return modeSelectionPrompt, nil

	case ActEnterDesign:
		rec.Branch = domain.BranchDesign
		rec.State = t.To
		return designIntro, nil

	case ActEnterEvaluate:
		rec.Branch = domain.BranchEvaluate
		rec.State = t.To
		return evaluateIntro, nil

	case ActCaptureSlots:
		slots, err := e.classifySlots(ctx, rec.Token, message)
		if err != nil {
			return "", err
		}
		rec.Context = rec.Context.Merge(slots)
		rec.State = t.To
		if rec.Branch == domain.BranchDesign {
			return existingAssessmentPrompt(rec.Context), nil
		}
		return evaluateAssessmentPrompt(rec.Context), nil

	case ActAskForAssessment:
		rec.State = t.To
		return shareAssessmentPrompt, nil

	case ActStoreAssessment:
		content := strings.TrimSpace(message)
		if content == "" {
			return shareAssessmentPrompt, nil
		}
		rec.Context.AssessmentContent = content
		rec.State = t.To
		return assessmentMenuPrompt, nil

	case ActClassifyAlignment:
		return e.evaluateAlignment(ctx, rec)

	case ActStoreAndClassify:
		content := strings.TrimSpace(message)
		if content == "" {
			return shareAssessmentPrompt, nil
		}
		rec.Context.AssessmentContent = content
		return e.evaluateAlignment(ctx, rec)

	case ActGenerateAssessment:
		artifact, err := e.generate(ctx, rec.Token, ports.GenerateRequest{
			Kind:    ports.KindAssessmentSet,
			Context: rec.Context,
		})
		if err != nil {
			return "", err
		}
		rec.Context.LastGeneratedArtifact = artifact
		rec.State = t.To
		return withFooter(artifact, refinementPrompt), nil

	case ActEvaluationReport:
		// Report and verdict come from the same stored assessment snapshot.
		report, err := e.generate(ctx, rec.Token, ports.GenerateRequest{
			Kind:    ports.KindEvaluationReport,
			Context: rec.Context,
		})
		if err != nil {
			return "", err
		}
		rec.State = t.To
		return withFooter(report, restartPrompt), nil

	case ActRationale:
		rationale, err := e.generate(ctx, rec.Token, ports.GenerateRequest{
			Kind:    ports.KindRationale,
			Context: rec.Context,
		})
		if err != nil {
			return "", err
		}
		rec.State = t.To
		return withFooter(rationale, "Send any message when you are done reading."), nil

	case ActClose:
		rec.State = t.To
		return closingMessage, nil

	case ActFinalize:
		rec.State = t.To
		return finalizedMessage(rec.Context.LastGeneratedArtifact), nil

	case ActReprompt:
		rec.State = t.To
		return strings.TrimPrefix(refinementPrompt, "---\n"), nil

	case ActRefine:
		artifact, err := e.generate(ctx, rec.Token, ports.GenerateRequest{
			Kind:          ports.KindRefinement,
			Context:       rec.Context,
			PriorArtifact: rec.Context.LastGeneratedArtifact,
			Instruction:   strings.TrimSpace(message),
		})
		if err != nil {
			return "", err
		}
		rec.Context.LastGeneratedArtifact = artifact
		rec.State = t.To
		return withFooter(artifact, refinementPrompt), nil

	case ActRestart:
		rec.Context = domain.ContextStore{}
		rec.Branch = domain.BranchNone
		rec.State = t.To
		return e.dispatch(ctx, rec, intent, message)

	case ActRestartPrompt:
		rec.State = t.To
		return restartPrompt, nil
	}

	return "", fmt.Errorf("%w: unhandled action %s", domain.ErrInvalidTransition, t.Action)
}

// evaluateAlignment classifies the stored assessment and routes to the
// aligned or not-aligned node. Classifier failures route to not-aligned.
func (e *Engine) evaluateAlignment(ctx context.Context, rec *domain.Record) (string, error) {
	verdict, err := e.classifyAlignment(ctx, rec.Token, rec.Context.AssessmentContent)
	if err != nil {
		return "", err
	}
	rec.Context.AssessmentAlignment = verdict
	if verdict == domain.AlignmentAligned {
		rec.State = domain.StateEvaluateAligned
		return alignedMessage, nil
	}
	rec.State = domain.StateEvaluateNotAligned
	return notAlignedMessage, nil
}

func (e *Engine) classifySlots(ctx context.Context, token, text string) (domain.SlotResult, error) {
	start := time.Now()
	slots, err := e.classifier.ClassifySlots(ctx, text)
	e.observe(ctx, token, "classify_slots", "", start, err)
	if err != nil {
		return domain.SlotResult{}, fmt.Errorf("%w: classify slots: %w", domain.ErrCapabilityUnavailable, err)
	}
	return slots, nil
}

// classifyAlignment only returns an error when the turn itself was canceled.
// Backend failures and unknown verdicts degrade to AlignmentNotAligned.
func (e *Engine) classifyAlignment(ctx context.Context, token, assessment string) (domain.Alignment, error) {
	start := time.Now()
	verdict, err := e.classifier.ClassifyAlignment(ctx, assessment)
	e.observe(ctx, token, "classify_alignment", "", start, err)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: classify alignment: %w", domain.ErrCapabilityUnavailable, ctxErr)
	}
	if err != nil {
		e.logger.Warn("alignment classification failed, assuming not aligned", "token", token, "err", err)
		return domain.AlignmentNotAligned, nil
	}
	if verdict != domain.AlignmentAligned {
		return domain.AlignmentNotAligned, nil
	}
	return verdict, nil
}

func (e *Engine) generate(ctx context.Context, token string, req ports.GenerateRequest) (string, error) {
	start := time.Now()
	text, err := e.generator.Generate(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty generation")
	}
	e.observe(ctx, token, "generate", string(req.Kind), start, err)
	if err != nil {
		return "", fmt.Errorf("%w: generate %s: %w", domain.ErrCapabilityUnavailable, req.Kind, err)
	}
	return text, nil
}

func (e *Engine) observe(ctx context.Context, token, capability, kind string, start time.Time, err error) {
	if e.hooks.OnCapability == nil {
		return
	}
	e.hooks.OnCapability(ctx, &domain.CapabilityEvent{
		EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventCapability, Token: token},
		Capability: capability,
		Kind:       kind,
		Duration:   time.Since(start),
		IsError:    err != nil,
	})
}

func finalizedMessage(artifact string) string {
	if strings.TrimSpace(artifact) == "" {
		return restartPrompt
	}
	return withFooter("Here is your finalized assessment set:\n\n"+artifact, restartPrompt)
}
