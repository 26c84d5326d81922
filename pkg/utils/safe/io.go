package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it. A nil
// closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err.Error())
	}
}

// Copy streams src into dst once response headers are committed, when a
// failure can only be logged. It returns the number of bytes written.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	if dst == nil || src == nil {
		return 0
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("failed to stream response body",
			"written", n,
			"error", err.Error())
	}
	return n
}
