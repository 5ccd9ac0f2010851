// File: pool/options.go
// Package pool defines functional options for the FramePool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"log/slog"

	"github.com/momentics/foreignbuf/control"
)

// Option customizes pool initialization.
type Option func(*FramePool)

// WithCapacity sets the buffer population size (default 8).
func WithCapacity(n int) Option {
	return func(p *FramePool) { p.cfg.capacity = n }
}

// WithFrameSize sets the byte length of every pooled buffer
// (default 64 KiB).
func WithFrameSize(n int) Option {
	return func(p *FramePool) { p.cfg.frameSize = n }
}

// WithQueueDepth sets the delivered-frame channel depth (default:
// population size).
func WithQueueDepth(n int) Option {
	return func(p *FramePool) { p.cfg.queueDepth = n }
}

// WithPoolLogger attaches a structured logger for lifecycle events.
func WithPoolLogger(l *slog.Logger) Option {
	return func(p *FramePool) { p.log = l }
}

// WithPoolMetrics publishes pool counters into reg.
func WithPoolMetrics(reg *control.MetricsRegistry) Option {
	return func(p *FramePool) { p.metrics = reg }
}

// WithConfigStore subscribes the pool to live-tunable knobs:
//
//	pool.drop_oldest (bool) — on a full delivery queue, evict the
//	oldest pending frame instead of dropping the new one.
func WithConfigStore(cs *control.ConfigStore) Option {
	return func(p *FramePool) { p.cfg.store = cs }
}
