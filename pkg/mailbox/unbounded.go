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

package mailbox

import (
	"context"
	"sync"
	"sync/atomic"
)

// Unbounded is a FIFO mailbox with no capacity ceiling. Sends never apply
// backpressure and only fail once the mailbox is closed. The queue grows in
// memory without limit if the owner falls behind; that risk is accepted by
// choosing this variant.
//
// Internally an intake goroutine shuttles envelopes from senders into a
// growable buffer and offers them to the owner one at a time, so the
// channel-based Queue contract is preserved.
type Unbounded struct {
	in     chan Envelope
	out    chan Envelope
	closed chan struct{}
	once   sync.Once
	size   atomic.Int64
}

// NewUnbounded creates an unbounded mailbox and starts its intake loop.
func NewUnbounded() *Unbounded {
	m := &Unbounded{
		in:     make(chan Envelope),
		out:    make(chan Envelope),
		closed: make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Unbounded) loop() {
	var buf []Envelope
	for {
		if len(buf) == 0 {
			select {
			case env := <-m.in:
				buf = append(buf, env)
				m.size.Add(1)
			case <-m.closed:
				close(m.out)
				return
			}
			continue
		}
		select {
		case env := <-m.in:
			buf = append(buf, env)
			m.size.Add(1)
		case m.out <- buf[0]:
			buf = buf[1:]
			m.size.Add(-1)
		case <-m.closed:
			// Stop accepting sends but hand over what is already
			// queued; the owner drains the mailbox on termination.
			for len(buf) > 0 {
				m.out <- buf[0]
				buf = buf[1:]
				m.size.Add(-1)
			}
			close(m.out)
			return
		}
	}
}

// Enqueue adds an envelope. It fails only with ErrClosed.
func (m *Unbounded) Enqueue(env Envelope) error {
	select {
	case m.in <- env:
		return nil
	case <-m.closed:
		return ErrClosed
	}
}

// Chan returns the delivery channel. It is closed once the mailbox has been
// closed and fully drained.
func (m *Unbounded) Chan() <-chan Envelope {
	return m.out
}

// TryDequeue removes the next envelope without blocking. A false result may
// be transient while the intake loop is shuttling; callers draining the
// mailbox should consult Len as well.
func (m *Unbounded) TryDequeue() (Envelope, bool) {
	select {
	case env, ok := <-m.out:
		if !ok {
			return Envelope{}, false
		}
		return env, true
	default:
		return Envelope{}, false
	}
}

// Dequeue blocks until an envelope arrives or ctx is canceled.
func (m *Unbounded) Dequeue(ctx context.Context) (Envelope, error) {
	select {
	case env, ok := <-m.out:
		if !ok {
			return Envelope{}, ErrClosed
		}
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Len reports the number of buffered envelopes.
func (m *Unbounded) Len() int {
	return int(m.size.Load())
}

// Close rejects all further sends. Envelopes already queued remain
// deliverable until drained, after which the delivery channel is closed.
func (m *Unbounded) Close() {
	m.once.Do(func() { close(m.closed) })
}
