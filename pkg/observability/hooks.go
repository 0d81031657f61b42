package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// Combine fans every event out to all hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if h.OnTransition != nil {
			prev, next := out.OnTransition, h.OnTransition
			out.OnTransition = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnCapability != nil {
			prev, next := out.OnCapability, h.OnCapability
			out.OnCapability = func(ctx context.Context, e *domain.CapabilityEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnReset != nil {
			prev, next := out.OnReset, h.OnReset
			out.OnReset = func(ctx context.Context, e *domain.EventBase) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}

// LogHooks writes one audit line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Info("transition",
				"token", e.Token,
				"from", e.From,
				"to", e.To,
				"branch", e.Branch,
				"intent", e.Intent,
			)
		},
		OnCapability: func(ctx context.Context, e *domain.CapabilityEvent) {
			level := slog.LevelDebug
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "capability",
				"token", e.Token,
				"capability", e.Capability,
				"kind", e.Kind,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			logger.Info("session reset", "token", e.Token)
		},
	}
}
