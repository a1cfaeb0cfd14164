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

// package supervisor provides OTP-style supervision for actors: restart
// strategies across a child set, per-child restart policies, restart-rate
// limiting with a sliding window, and escalation up the tree.
//
// A supervisor is itself an actor. Child terminations arrive as actor.Exit
// messages on its own mailbox, so restart handling for one supervisor's
// child set is serialized, while unrelated subtrees restart independently.
// When the restart rate limit is exceeded the supervisor fails itself,
// which its own supervisor observes like any other child failure; at the
// root the failure is fatal to the whole subtree.
package supervisor

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/metrics"
)

// RestartPolicy decides, per child, whether a termination triggers a
// restart at all.
type RestartPolicy int

const (
	// RestartPermanent restarts the child regardless of how it
	// terminated.
	RestartPermanent RestartPolicy = iota
	// RestartTransient restarts the child only after an abnormal
	// termination; a normal stop removes it.
	RestartTransient
	// RestartTemporary never restarts the child; any termination removes
	// it from the child table.
	RestartTemporary
)

// Strategy decides which siblings are affected when one child terminates.
type Strategy int

const (
	// OneForOne restarts only the terminated child.
	OneForOne Strategy = iota
	// OneForAll stops and restarts every child whenever any one
	// terminates. Use when children share coordinated state.
	OneForAll
	// RestForOne restarts the terminated child and every child
	// registered after it in start order.
	RestForOne
)

// ChildSpec declares how a supervisor starts and manages one child. The
// Factory is invoked for the initial start and for every restart, so each
// incarnation begins with fresh state.
type ChildSpec struct {
	// ID identifies the child within its supervisor. Required, unique.
	ID string
	// Factory constructs a fresh actor value. Required.
	Factory func() actor.Actor
	// Restart gates whether terminations trigger a restart.
	Restart RestartPolicy
	// Shutdown is applied when the supervisor stops this child, for
	// example as a sibling casualty of OneForAll. The zero value is
	// treated as Graceful with a 5 second drain.
	Shutdown actor.ShutdownPolicy
	// MailboxCapacity sizes the child's bounded mailbox; 0 uses the
	// runtime default.
	MailboxCapacity int
	// Backpressure sets the bounded mailbox policy.
	Backpressure mailbox.Policy
	// UnboundedMailbox gives the child an unbounded mailbox instead.
	// Supervisor children get one regardless, so child exits can never
	// be blocked out of a full queue.
	UnboundedMailbox bool
	// Intensity optionally overrides the supervisor-wide restart window
	// for terminations triggered by this child.
	Intensity *Intensity
}

func (s ChildSpec) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSpec)
	}
	if s.Factory == nil {
		return fmt.Errorf("%w: child %s has no factory", ErrInvalidSpec, s.ID)
	}
	return nil
}

var (
	// ErrInvalidSpec reports a malformed ChildSpec.
	ErrInvalidSpec = errors.New("invalid child spec")
	// ErrDuplicateChild reports a child id already present in the table.
	ErrDuplicateChild = errors.New("duplicate child id")
	// ErrUnknownChild reports a child id absent from the table.
	ErrUnknownChild = errors.New("unknown child id")
)

type childState struct {
	spec     ChildSpec
	ref      *actor.Ref
	restarts int
	window   *restartWindow
}

// Supervisor manages an ordered set of children. It implements actor.Actor
// and is spawned like any other actor, which is what allows supervision
// trees of arbitrary depth: a ChildSpec factory may return another
// Supervisor.
type Supervisor struct {
	strategy  Strategy
	intensity Intensity
	delay     time.Duration
	initial   []ChildSpec

	// Populated by the dispatch loop only.
	shared   *restartWindow
	children map[string]*childState
	order    []string
}

// New creates an unstarted supervisor for the given specs. Most callers
// should use the Builder, which validates the configuration and spawns the
// subtree; New exists so a ChildSpec factory can nest one supervisor under
// another.
func New(strategy Strategy, intensity Intensity, specs ...ChildSpec) *Supervisor {
	return &Supervisor{
		strategy:  strategy,
		intensity: intensity,
		initial:   specs,
	}
}

// withDelay sets the pause inserted before respawning, damping rapid-fire
// restart loops.
func (s *Supervisor) withDelay(d time.Duration) *Supervisor {
	s.delay = d
	return s
}

// PreStart spawns the initial children in registration order. A child
// failing pre-start aborts the supervisor's own spawn.
func (s *Supervisor) PreStart(ctx *actor.Context) error {
	s.shared = newRestartWindow(s.intensity)
	s.children = make(map[string]*childState, len(s.initial))
	for _, spec := range s.initial {
		if err := s.add(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// Receive handles child terminations and the dynamic management messages.
func (s *Supervisor) Receive(ctx *actor.Context, msg any) error {
	switch m := msg.(type) {
	case actor.Exit:
		return s.handleExit(ctx, m)
	case StartChild:
		err := s.add(ctx, m.Spec)
		s.reply(ctx, err, err)
		return nil
	case StopChild:
		err := s.stopChild(ctx, m)
		s.reply(ctx, err, err)
		return nil
	case ListChildren:
		infos := make([]ChildInfo, 0, len(s.order))
		for _, id := range s.order {
			c := s.children[id]
			infos = append(infos, ChildInfo{
				ID:       id,
				Ref:      c.ref,
				Restart:  c.spec.Restart,
				Restarts: c.restarts,
				State:    c.ref.State(),
			})
		}
		s.reply(ctx, infos, nil)
		return nil
	default:
		log.Printf("Supervisor %s: ignoring unexpected message %T", ctx.Name(), msg)
		return nil
	}
}

// reply answers a request with value, or logs err for fire-and-forget
// sends.
func (s *Supervisor) reply(ctx *actor.Context, value any, err error) {
	if replyErr := ctx.Reply(value); errors.Is(replyErr, actor.ErrNoReply) && err != nil {
		log.Printf("Supervisor %s: %v", ctx.Name(), err)
	}
}

// add validates a spec, registers it and starts the child.
func (s *Supervisor) add(ctx *actor.Context, spec ChildSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	if _, exists := s.children[spec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChild, spec.ID)
	}
	c := &childState{spec: normalize(spec), window: s.shared}
	if spec.Intensity != nil {
		c.window = newRestartWindow(*spec.Intensity)
	}
	ref, err := s.spawnChild(ctx, c.spec)
	if err != nil {
		return err
	}
	c.ref = ref
	s.children[spec.ID] = c
	s.order = append(s.order, spec.ID)
	return nil
}

func normalize(spec ChildSpec) ChildSpec {
	if spec.Shutdown == (actor.ShutdownPolicy{}) {
		spec.Shutdown = actor.Graceful(5 * time.Second)
	}
	return spec
}

// spawnChild brings up a fresh incarnation of a spec. The child's Exit is
// routed to the supervisor's own mailbox.
func (s *Supervisor) spawnChild(ctx *actor.Context, spec ChildSpec) (*actor.Ref, error) {
	a := spec.Factory()
	opts := []actor.Option{actor.WithName(spec.ID)}
	_, nested := a.(*Supervisor)
	if spec.UnboundedMailbox || nested {
		opts = append(opts, actor.WithMailbox(mailbox.NewUnbounded()))
	} else {
		if spec.MailboxCapacity > 0 {
			opts = append(opts, actor.WithMailboxCapacity(spec.MailboxCapacity))
		}
		opts = append(opts, actor.WithBackpressure(spec.Backpressure))
	}
	ref, err := ctx.Spawn(a, opts...)
	if err != nil {
		return nil, fmt.Errorf("start child %s: %w", spec.ID, err)
	}
	return ref, nil
}

// handleExit applies the restart decision for one child termination.
func (s *Supervisor) handleExit(ctx *actor.Context, exit actor.Exit) error {
	c, ok := s.children[exit.Name]
	if !ok || c.ref == nil || c.ref.ID() != exit.ID {
		// Exit of an instance already replaced or removed, for example a
		// sibling this supervisor stopped itself during a OneForAll
		// restart.
		return nil
	}

	restart := false
	switch c.spec.Restart {
	case RestartPermanent:
		restart = true
	case RestartTransient:
		restart = exit.Abnormal
	case RestartTemporary:
		restart = false
	}
	if !restart {
		log.Printf("Supervisor %s: child %s terminated (cause: %v), not restarting", ctx.Name(), exit.Name, exit.Cause)
		s.remove(exit.Name)
		return nil
	}

	if !c.window.allow(time.Now()) {
		metrics.SupervisorEscalationsTotal.Inc()
		log.Printf("Supervisor %s: restart limit exceeded for child %s, escalating", ctx.Name(), exit.Name)
		return fmt.Errorf("restart limit exceeded for child %s (cause: %v)", exit.Name, exit.Cause)
	}

	affected := s.affected(exit.Name)

	// Stop still-live casualties in reverse start order.
	for i := len(affected) - 1; i >= 0; i-- {
		sibling := s.children[affected[i]]
		if sibling.ref.ID() == exit.ID {
			continue
		}
		if !sibling.ref.State().Terminal() {
			sibling.ref.Stop(sibling.spec.Shutdown)
			<-sibling.ref.Done()
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	// Respawn in original start order, every incarnation with fresh state.
	for _, id := range affected {
		child := s.children[id]
		ref, err := s.spawnChild(ctx, child.spec)
		if err != nil {
			metrics.SupervisorEscalationsTotal.Inc()
			return fmt.Errorf("restart child %s: %w", id, err)
		}
		child.ref = ref
		child.restarts++
		metrics.SupervisorRestartsTotal.WithLabelValues(id).Inc()
	}
	log.Printf("Supervisor %s: restarted %d child(ren) after %s terminated (cause: %v)", ctx.Name(), len(affected), exit.Name, exit.Cause)
	return nil
}

// affected computes the child set the strategy restarts for a termination
// of id.
func (s *Supervisor) affected(id string) []string {
	switch s.strategy {
	case OneForAll:
		return append([]string(nil), s.order...)
	case RestForOne:
		for i, cid := range s.order {
			if cid == id {
				return append([]string(nil), s.order[i:]...)
			}
		}
		return []string{id}
	default:
		return []string{id}
	}
}

func (s *Supervisor) stopChild(ctx *actor.Context, m StopChild) error {
	c, ok := s.children[m.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChild, m.ID)
	}
	policy := c.spec.Shutdown
	if m.Policy != nil {
		policy = *m.Policy
	}
	// Remove first so the child's Exit is treated as stale.
	s.remove(m.ID)
	if !c.ref.State().Terminal() {
		c.ref.Stop(policy)
		<-c.ref.Done()
	}
	return nil
}

func (s *Supervisor) remove(id string) {
	delete(s.children, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
