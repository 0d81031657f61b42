package middleware

import "github.com/aretw0/udlcoach/pkg/ports"

// Middleware allows wrapping a SessionRepository to add behavior.
type Middleware func(ports.SessionRepository) ports.SessionRepository

// Chain applies middlewares so that the first one is the outermost.
func Chain(repo ports.SessionRepository, mws ...Middleware) ports.SessionRepository {
	for i := len(mws) - 1; i >= 0; i-- {
		repo = mws[i](repo)
	}
	return repo
}
