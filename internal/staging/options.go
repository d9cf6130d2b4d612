package staging

import (
	"time"

	"github.com/dmitrijs2005/gophterm/internal/logging"
)

// DefaultSizeInterval is how often size changes are published at most.
const DefaultSizeInterval = 250 * time.Millisecond

type options struct {
	sizeInterval time.Duration
	logger       logging.Logger
}

type Option func(*options)

// WithSizeInterval sets how often size change observers are called at most.
func WithSizeInterval(d time.Duration) Option {
	return func(o *options) { o.sizeInterval = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{sizeInterval: DefaultSizeInterval, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
