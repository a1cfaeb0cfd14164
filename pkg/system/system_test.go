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

package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/config"
	"github.com/turtacn/actor-go/pkg/supervisor"
)

type echo struct{}

func (echo) Receive(ctx *actor.Context, msg any) error {
	return ctx.Reply(msg)
}

// sleeper burns wall time per message without watching its context, so a
// graceful drain can only be cut short by its deadline.
type sleeper struct{}

func (sleeper) Receive(ctx *actor.Context, msg any) error {
	time.Sleep(time.Duration(msg.(int)) * time.Millisecond)
	return nil
}

func ask(t *testing.T, ref *actor.Ref, msg any) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := ref.SendAndWait(ctx, msg)
	require.NoError(t, err)
	return v
}

func TestSystemDefaults(t *testing.T) {
	s := New(nil)
	assert.Equal(t, "actor-go-node", s.Config().Runtime.Name)
	assert.NotNil(t, s.Broker())
	assert.Equal(t, 0, s.ActorCount())
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestSystemSpawnAndCount(t *testing.T) {
	s := New(nil)
	ref, err := s.Spawn(echo{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.ActorCount())

	assert.Equal(t, "ping", ask(t, ref, "ping"))

	ref.Stop(actor.Immediate())
	<-ref.Done()
	require.Eventually(t, func() bool {
		return s.ActorCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestSpawnRegisteredRoutesDirect(t *testing.T) {
	s := New(nil)
	defer s.Shutdown(context.Background())

	ref, err := s.SpawnRegistered("echo", echo{})
	require.NoError(t, err)
	assert.Equal(t, "echo", ref.Name())

	got, lookupErr := s.Broker().Lookup("echo")
	require.NoError(t, lookupErr)
	assert.Equal(t, ref.ID(), got.ID())
	require.NoError(t, s.Broker().SendDirect("echo", "fire-and-forget"))
}

func TestSpawnRegisteredDuplicateName(t *testing.T) {
	s := New(nil)
	defer s.Shutdown(context.Background())

	first, err := s.SpawnRegistered("echo", echo{})
	require.NoError(t, err)

	// A second registration fails and the new actor is stopped again.
	second, err := s.SpawnRegistered("echo", echo{})
	assert.Error(t, err)
	assert.Nil(t, second)

	got, lookupErr := s.Broker().Lookup("echo")
	require.NoError(t, lookupErr)
	assert.Equal(t, first.ID(), got.ID())
}

func TestSystemConfigDefaultsApplied(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Runtime.ShutdownTimeout = "50ms"
	s := New(cfg)

	ref, err := s.Spawn(sleeper{})
	require.NoError(t, err)
	// Queue work that outlives the configured drain timeout.
	for i := 0; i < 10; i++ {
		require.NoError(t, ref.Send(100))
	}

	start := time.Now()
	require.NoError(t, s.Shutdown(context.Background()))
	// Ten 100ms messages would need a second; the 50ms drain bound cuts
	// the queue short well before that.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSystemShutdownStopsActors(t *testing.T) {
	s := New(nil)
	ref, err := s.Spawn(echo{})
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case <-ref.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("actor outlived system shutdown")
	}
	assert.ErrorIs(t, ref.Send("late"), actor.ErrTerminated)
}

func TestSystemShutdownDeadline(t *testing.T) {
	s := New(nil)

	// An actor stuck in its handler cannot terminate before the deadline.
	gate := make(chan struct{})
	defer close(gate)
	entered := make(chan struct{}, 1)
	ref, err := s.Spawn(actorFunc(func(ctx *actor.Context, msg any) error {
		entered <- struct{}{}
		<-gate
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, ref.Send("occupy"))
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)
}

type actorFunc func(ctx *actor.Context, msg any) error

func (f actorFunc) Receive(ctx *actor.Context, msg any) error { return f(ctx, msg) }

func TestBuildSupervisorTracked(t *testing.T) {
	s := New(nil)

	sup, err := s.BuildSupervisor(supervisor.NewBuilder().
		WithStrategy(supervisor.OneForOne).
		Child(supervisor.ChildSpec{
			ID:      "worker",
			Factory: func() actor.Actor { return echo{} },
			Restart: supervisor.RestartPermanent,
		}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.ActorCount())
	assert.Equal(t, actor.Running, sup.State())

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, 0, s.ActorCount())
}

func TestBuildSupervisorInvalid(t *testing.T) {
	s := New(nil)
	defer s.Shutdown(context.Background())

	_, err := s.BuildSupervisor(supervisor.NewBuilder())
	assert.True(t, errors.Is(err, supervisor.ErrNoStrategy))
	assert.Equal(t, 0, s.ActorCount())
}

func TestAwaitTermination(t *testing.T) {
	s := New(nil)
	ref, err := s.Spawn(echo{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.AwaitTermination()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("AwaitTermination returned with a live actor")
	case <-time.After(50 * time.Millisecond):
	}

	ref.Stop(actor.Immediate())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AwaitTermination did not return")
	}
}
