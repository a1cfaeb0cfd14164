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
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/metrics"
)

// DefaultMailboxCapacity is the bounded mailbox capacity used when no
// mailbox option is given.
const DefaultMailboxCapacity = 1000

type options struct {
	name     string
	mb       mailbox.Queue
	capacity int
	policy   mailbox.Policy
	shutdown ShutdownPolicy
	exitTo   *Ref
}

// Option configures a spawn.
type Option func(*options)

// WithName sets a human-readable name used in logs and Exit reports.
// Unnamed actors use their instance id.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMailbox replaces the default bounded mailbox with an explicit one,
// for example mailbox.NewUnbounded(). The mailbox must not be shared with
// any other actor.
func WithMailbox(q mailbox.Queue) Option {
	return func(o *options) { o.mb = q }
}

// WithMailboxCapacity sets the capacity of the default bounded mailbox.
func WithMailboxCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithBackpressure sets the backpressure policy of the default bounded
// mailbox.
func WithBackpressure(p mailbox.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithShutdown sets the shutdown policy applied when the runtime context is
// canceled. Explicit Stop calls carry their own policy. The default is
// Immediate.
func WithShutdown(p ShutdownPolicy) Option {
	return func(o *options) { o.shutdown = p }
}

// WithExitTo designates a ref that receives an Exit message when this actor
// terminates. Supervisors use this to watch their children. Delivery is
// best effort: a dead watcher is ignored.
func WithExitTo(ref *Ref) Option {
	return func(o *options) { o.exitTo = ref }
}

// proc is the runtime side of a spawned actor: its identity, mailbox,
// lifecycle state and termination plumbing. It is mutated only by its own
// dispatch loop, except for the atomics that publish state to refs.
type proc struct {
	id      string
	name    string
	actor   Actor
	mb      mailbox.Queue
	runCtx  context.Context
	cancel  context.CancelFunc
	state   atomic.Int32
	changed atomic.Int64
	stopCh  chan ShutdownPolicy
	done    chan struct{}
	cause   error
	exitTo  *Ref
	defStop ShutdownPolicy
}

// Spawn constructs a mailbox and context for a, runs its pre-start hook and
// starts its dispatch loop. It returns once the actor reaches Running. If
// pre-start fails the actor transitions to Failed and Spawn returns the
// error instead of a usable ref.
//
// ctx bounds the actor's life: cancellation stops the actor with the policy
// configured via WithShutdown.
func Spawn(ctx context.Context, a Actor, opts ...Option) (*Ref, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := options{
		capacity: DefaultMailboxCapacity,
		policy:   mailbox.Block,
		shutdown: Immediate(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	mb := o.mb
	if mb == nil {
		mb = mailbox.NewBounded(o.capacity, o.policy)
	}
	// Children spawned through the Context inherit this derived context,
	// so a terminating parent cascades termination down the tree. The
	// reverse never holds: children carry no owning reference upward.
	runCtx, cancel := context.WithCancel(ctx)
	p := &proc{
		id:      uuid.NewString(),
		actor:   a,
		mb:      mb,
		runCtx:  runCtx,
		cancel:  cancel,
		stopCh:  make(chan ShutdownPolicy, 1),
		done:    make(chan struct{}),
		exitTo:  o.exitTo,
		defStop: o.shutdown,
	}
	p.name = o.name
	if p.name == "" {
		p.name = p.id
	}
	p.setState(Created)

	ready := make(chan error, 1)
	go p.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return &Ref{p: p}, nil
}

func (p *proc) setState(s State) {
	p.state.Store(int32(s))
	p.changed.Store(time.Now().UnixNano())
}

// run is the dispatch loop. It owns the actor value for the whole life of
// the instance and is the only goroutine that touches it.
func (p *proc) run(ready chan<- error) {
	defer close(p.done)
	defer p.cancel()
	c := &Context{p: p}

	p.setState(Starting)
	if ps, ok := p.actor.(PreStarter); ok {
		if err := p.safePreStart(ps, c); err != nil {
			p.cause = fmt.Errorf("pre-start: %w", err)
			p.setState(Failed)
			p.mb.Close()
			p.discard(ErrTerminated)
			ready <- err
			return
		}
	}
	p.setState(Running)
	metrics.ActorsSpawnedTotal.Inc()
	metrics.ActorsRunning.Inc()
	defer metrics.ActorsRunning.Dec()
	ready <- nil

	for {
		// A stop requested while the previous message was being handled
		// wins over further mailbox traffic.
		select {
		case policy := <-p.stopCh:
			p.terminate(c, policy)
			return
		default:
		}
		select {
		case policy := <-p.stopCh:
			p.terminate(c, policy)
			return
		case <-p.runCtx.Done():
			p.terminate(c, p.defStop)
			return
		case env, ok := <-p.mb.Chan():
			if !ok {
				p.terminate(c, Immediate())
				return
			}
			if err := p.handle(c, env); err != nil {
				p.fail(err)
				return
			}
		}
	}
}

func (p *proc) safePreStart(ps PreStarter, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ps.PreStart(c)
}

// handle dispatches one envelope to the actor. A panic in the handler is
// converted into a handler error. If the message was a request and the
// handler errored without replying, the waiting caller is resolved with
// ErrAborted.
func (p *proc) handle(c *Context, env mailbox.Envelope) (err error) {
	c.begin(env)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor %s panicked: %v", p.name, r)
		}
		if err != nil && env.ReplyTo != nil && !c.replied {
			select {
			case env.ReplyTo <- mailbox.Reply{Err: ErrAborted}:
			default:
			}
		}
		c.end()
		metrics.MessagesProcessedTotal.Inc()
	}()
	return p.actor.Receive(c, env.Message)
}

// terminate runs the normal stop sequence: close the mailbox, drain it per
// policy, run post-stop, report a normal exit. A handler error while
// draining switches to the failure path.
func (p *proc) terminate(c *Context, policy ShutdownPolicy) {
	p.setState(Stopping)
	p.mb.Close()

	switch policy.Mode {
	case ShutdownImmediate:
		p.discard(ErrTerminated)
	case ShutdownGraceful:
		timer := time.NewTimer(policy.Timeout)
		defer timer.Stop()
		if err := p.drain(c, timer.C); err != nil {
			p.fail(err)
			return
		}
	case ShutdownInfinity:
		if err := p.drain(c, nil); err != nil {
			p.fail(err)
			return
		}
	}

	if ps, ok := p.actor.(PostStopper); ok {
		p.safePostStop(ps, c)
	}
	p.cause = nil
	p.setState(Stopped)
	p.notifyExit(false, nil)
}

func (p *proc) safePostStop(ps PostStopper, c *Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Actor %s panicked in post-stop: %v", p.name, r)
		}
	}()
	ps.PostStop(c)
}

// drain processes queued envelopes until the mailbox is empty or the
// deadline fires, whichever first. A nil deadline drains completely. The
// mailbox is already closed, so the queue can only shrink.
func (p *proc) drain(c *Context, deadline <-chan time.Time) error {
	for {
		if deadline != nil {
			select {
			case <-deadline:
				p.discard(ErrTerminated)
				return nil
			default:
			}
		}
		env, ok := p.mb.TryDequeue()
		if !ok {
			if p.mb.Len() == 0 {
				return nil
			}
			// The unbounded intake loop may still be shuttling.
			runtime.Gosched()
			continue
		}
		if err := p.handle(c, env); err != nil {
			return err
		}
	}
}

// discard empties the mailbox without processing, resolving any waiting
// request-reply callers with reason.
func (p *proc) discard(reason error) {
	for {
		env, ok := p.mb.TryDequeue()
		if !ok {
			if p.mb.Len() == 0 {
				return
			}
			runtime.Gosched()
			continue
		}
		if env.ReplyTo != nil {
			select {
			case env.ReplyTo <- mailbox.Reply{Err: reason}:
			default:
			}
		}
	}
}

// fail is the abnormal termination path. State is discarded, queued
// requests are aborted and the watcher is told the cause.
func (p *proc) fail(err error) {
	log.Printf("Actor %s failed: %v", p.name, err)
	metrics.HandlerFailuresTotal.Inc()
	p.cause = err
	p.setState(Failed)
	p.mb.Close()
	p.discard(ErrAborted)
	p.notifyExit(true, err)
}

func (p *proc) notifyExit(abnormal bool, cause error) {
	if p.exitTo == nil {
		return
	}
	// Best effort: the watcher may itself be gone.
	_ = p.exitTo.Send(Exit{ID: p.id, Name: p.name, Abnormal: abnormal, Cause: cause})
}
