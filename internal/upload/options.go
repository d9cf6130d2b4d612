package upload

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophterm/internal/logging"
)

const (
	// DefaultLineWidth is the number of base64 characters per envelope line.
	DefaultLineWidth = 80

	// DefaultProgressInterval bounds how often progress observers run.
	DefaultProgressInterval = 250 * time.Millisecond

	// linesPerRead is how many body lines one source read may produce.
	linesPerRead = 64
)

type options struct {
	lineWidth        int
	progressInterval time.Duration
	logger           logging.Logger
}

type Option func(*options)

// WithLineWidth sets the envelope line width. It must be a positive multiple
// of 4 so every line except the last carries whole 3-byte groups.
func WithLineWidth(n int) Option {
	return func(o *options) { o.lineWidth = n }
}

func WithProgressInterval(d time.Duration) Option {
	return func(o *options) { o.progressInterval = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		lineWidth:        DefaultLineWidth,
		progressInterval: DefaultProgressInterval,
		logger:           logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lineWidth <= 0 || o.lineWidth%4 != 0 {
		return o, fmt.Errorf("%w: %d", ErrLineWidth, o.lineWidth)
	}
	return o, nil
}
