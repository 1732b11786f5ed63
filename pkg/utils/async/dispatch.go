package async

import (
	"context"

	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

// Go runs fn in a new goroutine on a context that keeps the values of ctx,
// including its logger, but not its cancellation. The returned channel
// receives exactly one value: the result of fn, or the result of recovered
// when fn panics.
func Go[T any](ctx context.Context, fn func(ctx context.Context) T, recovered func(ctx context.Context, r any) T) <-chan T {
	bgCtx := context.WithoutCancel(ctx)
	done := make(chan T, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
				done <- recovered(bgCtx, r)
			}
		}()

		done <- fn(bgCtx)
	}()

	return done
}
