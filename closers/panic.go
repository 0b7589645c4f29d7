package closers

import (
	"context"
	"errors"
	"io"

	"github.com/infini-money/infini-go/logging"
)

// Panic calls Close on the specified closer, panicking on error
func Panic(ctx context.Context, c io.Closer) {
	logger := logging.Logger(ctx, "closers.Panic")
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Msg("error attempting to close")
		if errors.Is(err, context.Canceled) {
			// the request context timing out manifests as a close failure on
			// the body stream, which is not worth crashing over
			return
		}
		panic(err.Error())
	}
}
