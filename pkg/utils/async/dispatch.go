package async

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/utils/errutil"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the request
// lifecycle. The logger carried by ctx is preserved. timeout bounds the
// background work; zero means no deadline.
func Dispatch(ctx context.Context, timeout time.Duration, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		cancel := func() {}
		if timeout > 0 {
			bgCtx, cancel = context.WithTimeout(bgCtx, timeout)
		}
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
