package indexing

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress reports how far a build stage has come.
// A nil *Progress is valid and reports nothing.
type Progress struct {
	mu        sync.Mutex
	writer    io.Writer
	stage     string
	total     int
	current   int
	every     int
	reported  int
	startTime time.Time
}

// NewProgress starts tracking a stage of total items, writing a line to
// writer every `every` items. A nil writer disables reporting.
func NewProgress(writer io.Writer, stage string, total, every int) *Progress {
	if writer == nil {
		return nil
	}
	if every < 1 {
		every = 1
	}
	return &Progress{
		writer:    writer,
		stage:     stage,
		total:     total,
		every:     every,
		startTime: time.Now(),
	}
}

// Add records delta more completed items.
func (p *Progress) Add(delta int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(p.current+delta, p.total)
	if p.current-p.reported >= p.every {
		p.report()
		p.reported = p.current
	}
}

// Finish marks the stage complete and ends the progress line.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since the stage started.
func (p *Progress) Elapsed() time.Duration {
	if p == nil {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *Progress) report() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100.0
	}
	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}
	fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%) - %.1f pages/s", p.stage, p.current, p.total, pct, rate)
}
