package output

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/surgehq/surge/internal/metrics"
)

// ProgressReporter displays real-time progress updates on a single line.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			stats := p.collector.Live()
			line := fmt.Sprintf("\rRequests: %d | Successes: %d | Failures: %d | RPS: %.1f",
				stats.Total, stats.Successes, stats.Failures, stats.RequestsPerSec)
			if name, counts, ok := topEndpoint(stats); ok && stats.Total > 0 {
				share := (float64(counts.Total) / float64(stats.Total)) * 100
				line += fmt.Sprintf(" | Top Endpoint: %s (%.0f%%)", name, share)
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}

func topEndpoint(stats metrics.LiveStats) (string, metrics.EndpointCounts, bool) {
	if len(stats.Endpoints) == 0 {
		return "", metrics.EndpointCounts{}, false
	}
	names := make([]string, 0, len(stats.Endpoints))
	for name := range stats.Endpoints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats.Endpoints[names[i]].Total == stats.Endpoints[names[j]].Total {
			return names[i] < names[j]
		}
		return stats.Endpoints[names[i]].Total > stats.Endpoints[names[j]].Total
	})
	name := names[0]
	return name, stats.Endpoints[name], true
}
