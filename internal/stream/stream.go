// Package stream carries progress events from pipeline services to SSE
// consumers. Delivery is at-most-once: a slow consumer loses the oldest
// events rather than stalling the producer.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/heliohq/mpc/internal/domain"
)

// Sink receives progress events. Push must not block.
type Sink interface {
	Push(ev domain.ProgressEvent)
}

// Emitter stamps and forwards events for one run. Timestamps are forced
// monotonically non-decreasing even if the wall clock steps backwards.
type Emitter struct {
	runID string
	phase domain.Phase
	sink  Sink

	mu   sync.Mutex
	last time.Time
	done bool
}

// NewEmitter creates an emitter bound to one run and phase.
func NewEmitter(runID string, phase domain.Phase, sink Sink) *Emitter {
	return &Emitter{runID: runID, phase: phase, sink: sink}
}

// Emit stamps and forwards one event. Events after a terminal event are
// dropped so a stream never resumes past its result.
func (e *Emitter) Emit(kind domain.EventKind, message string, percent float64, payload any) {
	if e == nil || e.sink == nil {
		return
	}

	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return
	}
	now := time.Now()
	if now.Before(e.last) {
		now = e.last
	}
	e.last = now
	if kind.Terminal() {
		e.done = true
	}
	e.mu.Unlock()

	e.sink.Push(domain.ProgressEvent{
		RunID:     e.runID,
		Phase:     e.phase,
		Status:    kind,
		Message:   message,
		Percent:   percent,
		Payload:   payload,
		Timestamp: now,
	})
}

// queueSize bounds buffered events per consumer. Oldest events are shed
// first when the consumer lags.
const queueSize = 64

// Queue is a bounded event buffer between one producer and one consumer.
type Queue struct {
	ch        chan domain.ProgressEvent
	closeOnce sync.Once
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{ch: make(chan domain.ProgressEvent, queueSize)}
}

// Push enqueues an event without blocking, dropping the oldest buffered
// event when full.
func (q *Queue) Push(ev domain.ProgressEvent) {
	defer func() {
		// Push after Close loses the event, which at-most-once allows.
		_ = recover()
	}()
	for {
		select {
		case q.ch <- ev:
			return
		default:
			select {
			case <-q.ch:
			default:
			}
		}
	}
}

// Close ends the stream. Safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}

// Events returns the consumer side of the queue. The channel closes when
// the producer calls Close.
func (q *Queue) Events() <-chan domain.ProgressEvent {
	return q.ch
}

// WriteEvent writes one event in SSE wire format: a "data:" line holding
// the JSON document followed by a blank line.
func WriteEvent(w io.Writer, ev domain.ProgressEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
