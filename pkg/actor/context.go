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

	"github.com/turtacn/actor-go/pkg/mailbox"
)

// Context is handed to an actor for the duration of one Receive (or hook)
// call. It exposes the actor's own address, replying, spawning children and
// requesting shutdown.
//
// The context is only valid during the call that received it. Retaining it
// beyond the handling call is an API misuse; the runtime does not detect
// it.
type Context struct {
	p       *proc
	env     mailbox.Envelope
	inMsg   bool
	replied bool
}

func (c *Context) begin(env mailbox.Envelope) {
	c.env = env
	c.inMsg = true
	c.replied = false
}

func (c *Context) end() {
	c.env = mailbox.Envelope{}
	c.inMsg = false
	c.replied = false
}

// Self returns the actor's own ref.
func (c *Context) Self() *Ref {
	return &Ref{p: c.p}
}

// ID returns the actor's instance id.
func (c *Context) ID() string {
	return c.p.id
}

// Name returns the actor's spawn name.
func (c *Context) Name() string {
	return c.p.name
}

// Context returns the runtime context the actor was spawned under. Handlers
// should use it to bound any blocking work they do, so system shutdown can
// interrupt them.
func (c *Context) Context() context.Context {
	return c.p.runCtx
}

// Reply answers the current message. It returns ErrNoReply if the message
// was fire-and-forget and ErrAlreadyReplied on a second call. The runtime
// never replies implicitly: a request the handler does not answer leaves
// the caller waiting for its timeout.
func (c *Context) Reply(v any) error {
	if !c.inMsg || c.env.ReplyTo == nil {
		return ErrNoReply
	}
	if c.replied {
		return ErrAlreadyReplied
	}
	c.replied = true
	// Cap-1 channel with a single waiter; if the caller already timed out
	// the reply is dropped on the floor.
	select {
	case c.env.ReplyTo <- mailbox.Reply{Value: v}:
	default:
	}
	return nil
}

// Spawn starts a child actor under the same runtime context. Unless
// overridden with WithExitTo, the child's Exit is delivered to this actor's
// own mailbox, which is how supervisors watch their children.
func (c *Context) Spawn(a Actor, opts ...Option) (*Ref, error) {
	opts = append([]Option{WithExitTo(c.Self())}, opts...)
	return Spawn(c.p.runCtx, a, opts...)
}

// Shutdown requests the actor's own termination with the given policy. The
// current message is finished first.
func (c *Context) Shutdown(policy ShutdownPolicy) {
	c.Self().Stop(policy)
}
