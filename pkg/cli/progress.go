package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// BatchProgress reports progress of a multi-file compile on one line.
type BatchProgress struct {
	mu         sync.Mutex
	writer     io.Writer
	total      int
	done       int
	understood int
	failed     int
	started    time.Time
}

// NewBatchProgress creates a reporter for total files. If w is nil it
// writes to os.Stderr.
func NewBatchProgress(w io.Writer, total int) *BatchProgress {
	if w == nil {
		w = os.Stderr
	}
	return &BatchProgress{writer: w, total: total, started: time.Now()}
}

// Compiled records one finished compile.
func (p *BatchProgress) Compiled(understood bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if understood {
		p.understood++
	}
	p.render()
}

// Failed records one compile that returned an error.
func (p *BatchProgress) Failed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.failed++
	p.render()
}

// Finish writes the summary line.
func (p *BatchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, "\ncompiled %d file(s) in %s: %d understood, %d not understood, %d failed\n",
		p.done, time.Since(p.started).Round(time.Millisecond), p.understood, p.done-p.understood-p.failed, p.failed)
}

// Counts returns the files done, understood and failed so far.
func (p *BatchProgress) Counts() (done, understood, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.understood, p.failed
}

func (p *BatchProgress) render() {
	if p.total == 0 {
		return
	}
	fmt.Fprintf(p.writer, "\r[%d/%d] understood %d, failed %d", p.done, p.total, p.understood, p.failed)
}
