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

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/mailbox"
)

var (
	// ErrNoChildren rejects building a supervisor with an empty child
	// set.
	ErrNoChildren = errors.New("supervisor has no children")
	// ErrNoStrategy rejects building a supervisor without a strategy.
	ErrNoStrategy = errors.New("supervisor strategy not set")
)

// Builder accumulates a supervisor configuration and validates it in one
// place at Build, before any actor is spawned. The strategy is a required
// field; intensity defaults to DefaultIntensity.
type Builder struct {
	name        string
	strategy    Strategy
	strategySet bool
	intensity   Intensity
	delay       time.Duration
	specs       []ChildSpec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{intensity: DefaultIntensity}
}

// WithName names the supervisor actor for logs and Exit reports.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithStrategy sets the restart strategy. Required.
func (b *Builder) WithStrategy(s Strategy) *Builder {
	b.strategy = s
	b.strategySet = true
	return b
}

// WithIntensity sets the supervisor-wide restart-rate limit.
func (b *Builder) WithIntensity(maxRestarts int, window time.Duration) *Builder {
	b.intensity = Intensity{MaxRestarts: maxRestarts, Window: window}
	return b
}

// WithRestartDelay inserts a pause before every respawn, damping rapid
// restart loops of persistently failing children.
func (b *Builder) WithRestartDelay(d time.Duration) *Builder {
	b.delay = d
	return b
}

// Child appends a child spec. Children start, stop and restart in
// registration order.
func (b *Builder) Child(spec ChildSpec) *Builder {
	b.specs = append(b.specs, spec)
	return b
}

// Build validates the configuration and spawns the supervisor together
// with its full subtree. It returns once every child is Running; any
// pre-start failure in the tree aborts the build. Escalations of the
// returned supervisor are observable through its ref's Done and ExitCause.
func (b *Builder) Build(ctx context.Context) (*actor.Ref, error) {
	if !b.strategySet {
		return nil, ErrNoStrategy
	}
	if len(b.specs) == 0 {
		return nil, ErrNoChildren
	}
	if b.intensity.MaxRestarts < 1 || b.intensity.Window <= 0 {
		return nil, fmt.Errorf("%w: invalid intensity %d/%s", ErrInvalidSpec, b.intensity.MaxRestarts, b.intensity.Window)
	}
	seen := make(map[string]struct{}, len(b.specs))
	for _, spec := range b.specs {
		if err := spec.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChild, spec.ID)
		}
		seen[spec.ID] = struct{}{}
	}

	sup := New(b.strategy, b.intensity, b.specs...).withDelay(b.delay)
	name := b.name
	if name == "" {
		name = "supervisor"
	}
	// An unbounded mailbox guarantees child exits are never blocked out
	// of the supervisor's queue.
	return actor.Spawn(ctx, sup,
		actor.WithName(name),
		actor.WithMailbox(mailbox.NewUnbounded()),
	)
}
