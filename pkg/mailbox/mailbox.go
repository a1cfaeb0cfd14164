// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailbox provides the per-actor message queues of the runtime.
// A mailbox buffers envelopes between senders and the single dispatch loop
// that owns it. Two variants exist: a bounded queue with a configurable
// backpressure policy applied when full, and an unbounded queue that never
// rejects a message but may grow without limit. Both preserve strict FIFO
// order of enqueue.
package mailbox

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrFull is returned by a bounded mailbox under the Fail policy when
	// the queue is at capacity.
	ErrFull = errors.New("mailbox full")
	// ErrDropped is returned by a bounded mailbox under the DropNewest
	// policy when the incoming message was discarded because the queue was
	// at capacity.
	ErrDropped = errors.New("message dropped")
	// ErrClosed is returned when enqueueing into a mailbox whose owner has
	// terminated.
	ErrClosed = errors.New("mailbox closed")
)

// Policy selects the backpressure behavior of a bounded mailbox when it is
// at capacity.
type Policy int

const (
	// Block suspends the sender until space frees up or the mailbox is
	// closed.
	Block Policy = iota
	// DropNewest discards the incoming message and reports ErrDropped to
	// the sender.
	DropNewest
	// Fail rejects the incoming message immediately with ErrFull.
	Fail
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Block:
		return "block"
	case DropNewest:
		return "drop-newest"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Reply carries the outcome of a request-reply exchange back to the waiting
// caller. Exactly one Reply is ever delivered per reply channel.
type Reply struct {
	// Value is the value the handler explicitly replied with.
	Value any
	// Err is set when the runtime aborted the exchange, for example
	// because the target actor failed or was stopped before replying.
	Err error
}

// Envelope wraps a message together with an optional reply channel. The
// reply channel is present only for request-reply sends; fire-and-forget
// messages carry a nil ReplyTo. The envelope is owned by the mailbox from
// enqueue until dequeue, at which point ownership transfers to the dispatch
// loop.
type Envelope struct {
	Message any
	ReplyTo chan Reply
}

// Queue is the interface the actor dispatch loop consumes messages through.
// A queue is owned by exactly one actor instance; only that instance's
// dispatch loop may receive from it.
type Queue interface {
	// Enqueue adds an envelope to the queue. The error, if any, is one of
	// ErrFull, ErrDropped or ErrClosed.
	Enqueue(env Envelope) error
	// Chan exposes the delivery channel the dispatch loop selects on.
	Chan() <-chan Envelope
	// TryDequeue removes the next envelope without blocking. It reports
	// false when the queue is empty.
	TryDequeue() (Envelope, bool)
	// Dequeue blocks until an envelope is available or the context is
	// canceled.
	Dequeue(ctx context.Context) (Envelope, error)
	// Len reports the number of buffered envelopes.
	Len() int
	// Close rejects all further sends. Envelopes already enqueued remain
	// readable so a terminating actor can drain them. Close is
	// idempotent.
	Close()
}

// Bounded is a fixed-capacity FIFO mailbox backed by a buffered channel.
// When the buffer is full the configured backpressure Policy decides whether
// the sender blocks, the message is dropped, or the send fails.
type Bounded struct {
	ch     chan Envelope
	policy Policy
	closed chan struct{}
	once   sync.Once
}

// NewBounded creates a bounded mailbox with the given capacity and
// backpressure policy. Capacity must be at least 1.
func NewBounded(capacity int, policy Policy) *Bounded {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded{
		ch:     make(chan Envelope, capacity),
		policy: policy,
		closed: make(chan struct{}),
	}
}

// Enqueue adds an envelope, applying the backpressure policy when the buffer
// is full.
func (m *Bounded) Enqueue(env Envelope) error {
	select {
	case <-m.closed:
		return ErrClosed
	default:
	}
	switch m.policy {
	case Block:
		select {
		case m.ch <- env:
			return nil
		case <-m.closed:
			return ErrClosed
		}
	case DropNewest:
		select {
		case m.ch <- env:
			return nil
		case <-m.closed:
			return ErrClosed
		default:
			return ErrDropped
		}
	default: // Fail
		select {
		case m.ch <- env:
			return nil
		case <-m.closed:
			return ErrClosed
		default:
			return ErrFull
		}
	}
}

// Chan returns the delivery channel.
func (m *Bounded) Chan() <-chan Envelope {
	return m.ch
}

// TryDequeue removes the next envelope without blocking.
func (m *Bounded) TryDequeue() (Envelope, bool) {
	select {
	case env := <-m.ch:
		return env, true
	default:
		return Envelope{}, false
	}
}

// Dequeue blocks until an envelope arrives or ctx is canceled.
func (m *Bounded) Dequeue(ctx context.Context) (Envelope, error) {
	select {
	case env := <-m.ch:
		return env, nil
	default:
	}
	select {
	case env := <-m.ch:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Len reports the number of buffered envelopes.
func (m *Bounded) Len() int {
	return len(m.ch)
}

// Cap reports the mailbox capacity.
func (m *Bounded) Cap() int {
	return cap(m.ch)
}

// Close rejects all further sends. Buffered envelopes remain readable.
func (m *Bounded) Close() {
	m.once.Do(func() { close(m.closed) })
}
