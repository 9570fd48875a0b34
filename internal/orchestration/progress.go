package orchestration

import (
	"sync/atomic"
	"time"
)

// ProgressBufferSize is the capacity of the progress channel.
const ProgressBufferSize = 64

// progressTracker counts completed iterations from any goroutine and
// forwards updates without blocking the workers.
type progressTracker struct {
	done  atomic.Int64
	total int
	ch    chan ProgressUpdate
}

func newProgressTracker(total int) *progressTracker {
	return &progressTracker{total: total, ch: make(chan ProgressUpdate, ProgressBufferSize)}
}

// step counts one iteration and offers an update to the reporter.
func (p *progressTracker) step() {
	done := int(p.done.Add(1))
	select {
	case p.ch <- ProgressUpdate{Done: done, Total: p.total}:
	default:
	}
}

// finish delivers the final update and closes the channel. It must be called
// once, after every step call has returned.
func (p *progressTracker) finish() {
	p.ch <- ProgressUpdate{Done: int(p.done.Load()), Total: p.total}
	close(p.ch)
}

// ETA estimates the time remaining from the average iteration rate so far.
// It returns 0 until at least one iteration has completed.
func ETA(u ProgressUpdate, elapsed time.Duration) time.Duration {
	if u.Done <= 0 || u.Done >= u.Total {
		return 0
	}
	perIteration := elapsed / time.Duration(u.Done)
	return perIteration * time.Duration(u.Total-u.Done)
}
