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

package actor

import (
	"context"
	"errors"
	"time"

	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/metrics"
)

// Ref is an opaque handle to a spawned actor. Refs are cheap to copy and
// safe for concurrent use; holding one does not keep the actor alive.
type Ref struct {
	p *proc
}

// ID returns the unique instance id. A restarted actor has a new id.
func (r *Ref) ID() string {
	return r.p.id
}

// Name returns the spawn name.
func (r *Ref) Name() string {
	return r.p.name
}

// State returns the current lifecycle state.
func (r *Ref) State() State {
	return State(r.p.state.Load())
}

// StateChangedAt returns the time of the last lifecycle transition.
func (r *Ref) StateChangedAt() time.Time {
	return time.Unix(0, r.p.changed.Load())
}

// Send enqueues a fire-and-forget message and returns once it is accepted
// by the mailbox. It returns ErrTerminated if the actor has stopped or
// failed, or a mailbox backpressure error (mailbox.ErrFull,
// mailbox.ErrDropped) depending on the mailbox configuration. With a
// blocking mailbox, Send suspends while the mailbox is full.
func (r *Ref) Send(msg any) error {
	return r.enqueue(mailbox.Envelope{Message: msg})
}

// SendAndWait enqueues a request and suspends the caller until the actor
// explicitly replies or ctx expires, whichever first. A deadline expiry
// yields ErrTimeout and leaves the actor running; there is no implicit
// cancellation of in-flight handling. If the target terminates before
// replying the caller is resolved immediately: ErrAborted on failure,
// ErrTerminated on a stop that discarded the request.
func (r *Ref) SendAndWait(ctx context.Context, msg any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := make(chan mailbox.Reply, 1)
	if err := r.enqueue(mailbox.Envelope{Message: msg, ReplyTo: reply}); err != nil {
		return nil, err
	}
	select {
	case rep := <-reply:
		return rep.Value, rep.Err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	case <-r.p.done:
		// The reply may have raced the termination.
		select {
		case rep := <-reply:
			return rep.Value, rep.Err
		default:
		}
		return nil, ErrTerminated
	}
}

func (r *Ref) enqueue(env mailbox.Envelope) error {
	if r.State().Terminal() {
		return ErrTerminated
	}
	err := r.p.mb.Enqueue(env)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mailbox.ErrClosed):
		return ErrTerminated
	case errors.Is(err, mailbox.ErrDropped):
		metrics.MailboxDroppedTotal.Inc()
		return err
	default:
		return err
	}
}

// Stop requests termination with the given shutdown policy. The actor
// finishes its current message first. Stop does not wait; use Done to
// observe completion. Duplicate stop requests are ignored.
func (r *Ref) Stop(policy ShutdownPolicy) {
	select {
	case r.p.stopCh <- policy:
	default:
	}
}

// Done returns a channel closed when the actor has terminated.
func (r *Ref) Done() <-chan struct{} {
	return r.p.done
}

// ExitCause returns the termination cause: nil for a normal stop, the
// handler error otherwise. It is valid only after Done is closed.
func (r *Ref) ExitCause() error {
	select {
	case <-r.p.done:
		return r.p.cause
	default:
		return nil
	}
}
