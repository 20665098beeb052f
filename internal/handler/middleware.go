package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// HandlerFunc executes one command and returns the document to print.
type HandlerFunc func(ctx context.Context, d *Dependencies) (any, error)

// MiddlewareFunc wraps a HandlerFunc.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Chain applies middleware so that the last one runs outermost.
func Chain(h HandlerFunc, middleware ...MiddlewareFunc) HandlerFunc {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// LoggingMiddleware logs each command with its duration and outcome.
func LoggingMiddleware(command string) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, d *Dependencies) (any, error) {
			start := time.Now()
			log.Debug().Str("command", command).Msg("Running command")

			result, err := next(ctx, d)

			ev := log.Debug()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("command", command).
				Dur("duration", time.Since(start)).
				Msg("Command finished")
			return result, err
		}
	}
}

// RecoveryMiddleware turns a panic into an error.
func RecoveryMiddleware() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, d *Dependencies) (result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in command")
					result, err = nil, fmt.Errorf("internal error: %v", r)
				}
			}()
			return next(ctx, d)
		}
	}
}
