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

// Package actor implements the execution core of the runtime: the actor
// contract, the per-instance lifecycle state machine, and the dispatch loop
// that drives one actor over its mailbox.
//
// An actor is an isolated unit of state that processes one message at a
// time. Its state is owned exclusively by its own dispatch loop; the only
// way to interact with it is through its Ref. A handler error is fatal to
// the instance ("let it crash"): the runtime never retries a message, it
// reports the termination cause to whoever spawned the actor and leaves
// recovery to supervision.
package actor

import (
	"errors"
	"time"
)

// Actor is the behavior contract implemented by user code. Receive is
// invoked for one message at a time, never concurrently. Returning a
// non-nil error terminates the instance and discards its state.
type Actor interface {
	Receive(ctx *Context, msg any) error
}

// PreStarter is implemented by actors that need initialization before the
// first message. A pre-start error aborts the spawn: the actor transitions
// to Failed and Spawn returns the error.
type PreStarter interface {
	PreStart(ctx *Context) error
}

// PostStopper is implemented by actors that need cleanup on normal
// termination. PostStop runs after the mailbox has been drained according
// to the shutdown policy. It does not run when the actor fails; crash
// semantics discard state without cleanup.
type PostStopper interface {
	PostStop(ctx *Context)
}

// Exit reports the termination of a spawned actor. It is delivered as a
// regular message to the ref configured with WithExitTo, which is how
// supervisors observe their children.
type Exit struct {
	// ID is the unique instance id of the terminated actor. A restarted
	// actor is a fresh instance with a fresh ID.
	ID string
	// Name is the spawn name of the actor.
	Name string
	// Abnormal is true when the actor failed (handler error or panic),
	// false on a normal stop.
	Abnormal bool
	// Cause is the terminating error, nil on a normal stop.
	Cause error
}

var (
	// ErrTerminated is returned when sending to an actor that has already
	// stopped or failed. Messages enqueued before the death of an actor
	// are not reported retroactively; the sender observes the failure on
	// its next send.
	ErrTerminated = errors.New("actor terminated")
	// ErrTimeout is returned by SendAndWait when the deadline elapses
	// before the actor replies. The actor itself keeps running.
	ErrTimeout = errors.New("request timed out")
	// ErrAborted resolves a pending request-reply exchange whose target
	// failed before replying.
	ErrAborted = errors.New("actor failed before replying")
	// ErrNoReply is returned by Context.Reply when the current message
	// was sent fire-and-forget.
	ErrNoReply = errors.New("message is not a request")
	// ErrAlreadyReplied is returned by Context.Reply when the current
	// message has already been answered.
	ErrAlreadyReplied = errors.New("reply already sent")
)

// ShutdownMode selects how a stopping actor treats messages still queued in
// its mailbox.
type ShutdownMode int

const (
	// ShutdownGraceful drains queued messages until a timeout, then
	// discards the rest.
	ShutdownGraceful ShutdownMode = iota
	// ShutdownImmediate discards all queued messages.
	ShutdownImmediate
	// ShutdownInfinity drains every queued message before stopping.
	ShutdownInfinity
)

// ShutdownPolicy pairs a shutdown mode with its drain timeout. The timeout
// is meaningful only for ShutdownGraceful.
type ShutdownPolicy struct {
	Mode    ShutdownMode
	Timeout time.Duration
}

// Graceful returns a policy that drains the mailbox for at most timeout.
func Graceful(timeout time.Duration) ShutdownPolicy {
	return ShutdownPolicy{Mode: ShutdownGraceful, Timeout: timeout}
}

// Immediate returns a policy that discards all queued messages.
func Immediate() ShutdownPolicy {
	return ShutdownPolicy{Mode: ShutdownImmediate}
}

// Infinity returns a policy that drains the mailbox completely, however
// long that takes.
func Infinity() ShutdownPolicy {
	return ShutdownPolicy{Mode: ShutdownInfinity}
}
