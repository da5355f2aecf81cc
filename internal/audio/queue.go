// Package audio provides sequential audio sinks on top of the beep speaker.
package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Queue is a beep.Streamer that plays appended streamers one after another.
// While open and empty it streams silence; once sealed it ends as soon as the
// queue runs dry.
type Queue struct {
	mu      sync.Mutex
	streams []beep.Streamer
	sealed  bool
	done    chan struct{}
	once    sync.Once
}

// NewQueue returns an open, empty queue.
func NewQueue() *Queue {
	return &Queue{done: make(chan struct{})}
}

// Append queues s. Appending to a sealed queue is ignored.
func (q *Queue) Append(s beep.Streamer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sealed {
		return
	}
	q.streams = append(q.streams, s)
}

// Seal stops accepting streamers; the queue finishes after the last one.
func (q *Queue) Seal() {
	q.mu.Lock()
	q.sealed = true
	empty := len(q.streams) == 0
	q.mu.Unlock()

	if empty {
		q.finish()
	}
}

// Clear drops every queued streamer and seals the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.streams = nil
	q.sealed = true
	q.mu.Unlock()
	q.finish()
}

// Done is closed once the queue has been sealed and fully played.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Stream implements beep.Streamer.
func (q *Queue) Stream(samples [][2]float64) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	filled := 0
	for filled < len(samples) {
		if len(q.streams) == 0 {
			if q.sealed {
				break
			}
			for i := range samples[filled:] {
				samples[filled+i] = [2]float64{}
			}
			filled = len(samples)
			break
		}

		n, ok := q.streams[0].Stream(samples[filled:])
		if !ok || n == 0 {
			q.streams = q.streams[1:]
		}
		filled += n
	}

	if filled == 0 && q.sealed {
		q.finish()
		return 0, false
	}
	return filled, true
}

// Err implements beep.Streamer.
func (q *Queue) Err() error {
	return nil
}

func (q *Queue) finish() {
	q.once.Do(func() { close(q.done) })
}
