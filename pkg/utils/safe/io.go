package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it.
// nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs a failure. Used once response headers are
// committed and an error can no longer reach the client.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write response", slog.Any("error", err))
	}
}
