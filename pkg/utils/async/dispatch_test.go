package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lifeguide/pkg/utils/async"
)

type ctxKey struct{}

func TestGo(t *testing.T) {
	t.Run("delivers result", func(t *testing.T) {
		ch := async.Go(t.Context(), func(ctx context.Context) string {
			return "ok"
		}, func(ctx context.Context, r any) string {
			return "recovered"
		})
		gt.Value(t, <-ch).Equal("ok")
	})

	t.Run("recovers panic", func(t *testing.T) {
		ch := async.Go(t.Context(), func(ctx context.Context) string {
			panic("boom")
		}, func(ctx context.Context, r any) string {
			return "recovered: " + r.(string)
		})
		gt.Value(t, <-ch).Equal("recovered: boom")
	})

	t.Run("survives caller cancellation and keeps values", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.WithValue(t.Context(), ctxKey{}, "v"))
		release := make(chan struct{})

		ch := async.Go(ctx, func(ctx context.Context) string {
			<-release
			if ctx.Err() != nil {
				return "cancelled"
			}
			return ctx.Value(ctxKey{}).(string)
		}, func(ctx context.Context, r any) string {
			return "recovered"
		})

		cancel()
		close(release)

		select {
		case got := <-ch:
			gt.Value(t, got).Equal("v")
		case <-time.After(time.Second):
			t.Fatal("result not delivered")
		}
	})
}
