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

// Package system provides the host-facing facade of the runtime. A System
// owns a broker and a root context; it spawns actors with configured
// defaults, tracks the top-level population, and shuts the whole tree down
// in one call.
package system

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/broker"
	"github.com/turtacn/actor-go/pkg/config"
	"github.com/turtacn/actor-go/pkg/supervisor"
)

// System is the entry point for host applications.
type System struct {
	cfg    *config.Config
	broker *broker.Broker
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	count  atomic.Int64
}

// New creates a runtime with the given configuration; nil uses defaults.
func New(cfg *config.Config) *System {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &System{
		cfg:    cfg,
		broker: broker.New(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Broker returns the system's message broker.
func (s *System) Broker() *broker.Broker {
	return s.broker
}

// Config returns the system configuration.
func (s *System) Config() *config.Config {
	return s.cfg
}

// Context returns the root context every actor in this system runs under.
func (s *System) Context() context.Context {
	return s.ctx
}

// Spawn starts a top-level actor with the system's configured mailbox and
// shutdown defaults. Explicit options override the defaults.
func (s *System) Spawn(a actor.Actor, opts ...actor.Option) (*actor.Ref, error) {
	r := s.cfg.Runtime
	defaults := []actor.Option{
		actor.WithMailboxCapacity(r.MailboxCapacity),
		actor.WithBackpressure(r.BackpressurePolicy()),
		actor.WithShutdown(actor.Graceful(r.ShutdownTimeoutDuration())),
	}
	ref, err := actor.Spawn(s.ctx, a, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	s.track(ref)
	return ref, nil
}

// SpawnRegistered spawns a top-level actor and binds it to name in the
// broker registry, making it reachable via SendDirect.
func (s *System) SpawnRegistered(name string, a actor.Actor, opts ...actor.Option) (*actor.Ref, error) {
	ref, err := s.Spawn(a, append([]actor.Option{actor.WithName(name)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := s.broker.Register(name, ref); err != nil {
		ref.Stop(actor.Immediate())
		return nil, err
	}
	return ref, nil
}

// BuildSupervisor spawns a supervision subtree under the system's root
// context and tracks the root supervisor like any other top-level actor.
func (s *System) BuildSupervisor(b *supervisor.Builder) (*actor.Ref, error) {
	ref, err := b.Build(s.ctx)
	if err != nil {
		return nil, err
	}
	s.track(ref)
	return ref, nil
}

func (s *System) track(ref *actor.Ref) {
	s.wg.Add(1)
	s.count.Add(1)
	go func() {
		<-ref.Done()
		s.count.Add(-1)
		s.wg.Done()
	}()
}

// ActorCount reports the number of live top-level actors spawned through
// the system. Children spawned by actors themselves are not counted here;
// they live and die with their parents.
func (s *System) ActorCount() int {
	return int(s.count.Load())
}

// Shutdown stops every actor in the system and waits for top-level actors
// to terminate or ctx to expire. Each actor applies its own shutdown
// policy.
func (s *System) Shutdown(ctx context.Context) error {
	log.Printf("System %s shutting down", s.cfg.Runtime.Name)
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitTermination blocks until all top-level actors have terminated.
func (s *System) AwaitTermination() {
	s.wg.Wait()
}
