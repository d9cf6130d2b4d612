package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
)

var spinner = []rune{'|', '/', '-', '\\'}

// progress redraws a single status line. A negative total means the size is
// unknown and an indeterminate spinner is shown instead of a percentage.
type progress struct {
	mu    sync.Mutex
	w     io.Writer
	total int64
	ticks int
	drawn bool
}

func newProgress(w io.Writer, total int64) *progress {
	return &progress{w: w, total: total}
}

func (p *progress) update(sent int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\r%s", progressLine(sent, p.total, p.ticks))
	p.ticks++
	p.drawn = true
}

func (p *progress) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}

func progressLine(sent, total int64, tick int) string {
	if total < 0 {
		return fmt.Sprintf("%c sent %s", spinner[tick%len(spinner)], humanize.Bytes(uint64(sent)))
	}

	pct := int64(100)
	if total > 0 {
		pct = min(sent*100/total, 100)
	}
	return fmt.Sprintf("sent %s / %s (%d%%)",
		humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(total)), pct)
}
