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

// Package broker provides the optional routing layer between actors: a
// topic-based publish/subscribe table for decoupled fan-out, and a named
// actor registry for direct point-to-point delivery.
//
// The subscription table is the one structure in the runtime genuinely
// shared across many producers and consumers. Mutations are synchronized
// internally; publish fan-out takes a read lock only.
package broker

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/storage"
)

var (
	// ErrUnknownActor is returned when a name is not registered.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrAlreadyRegistered is returned when registering a name that is
	// already bound to a live actor.
	ErrAlreadyRegistered = errors.New("name already registered")
)

// Broker routes messages between actors without the sender holding a ref.
// Direct addressing is the latency-critical point-to-point path; pub/sub
// trades a fixed per-subscriber routing cost for decoupling and dynamic
// fan-out.
type Broker struct {
	mu     sync.RWMutex
	topics map[string][]*actor.Ref
	names  storage.Store
}

// New creates a broker with an in-memory registry.
func New() *Broker {
	return NewWithStore(storage.NewMemStore())
}

// NewWithStore creates a broker whose named-actor registry is backed by the
// given store.
func NewWithStore(names storage.Store) *Broker {
	return &Broker{
		topics: make(map[string][]*actor.Ref),
		names:  names,
	}
}

// Register binds a name to an actor ref for direct delivery. Registering a
// name bound to a live actor fails with ErrAlreadyRegistered; a binding to
// a terminated actor is silently replaced.
func (b *Broker) Register(name string, ref *actor.Ref) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, err := b.names.Get(name); err == nil {
		if r, ok := existing.(*actor.Ref); ok && !r.State().Terminal() {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
		}
	}
	return b.names.Set(name, ref)
}

// Unregister removes a name binding. Unknown names are ignored.
func (b *Broker) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.names.Delete(name)
}

// Lookup resolves a registered name to its ref.
func (b *Broker) Lookup(name string) (*actor.Ref, error) {
	v, err := b.names.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, name)
	}
	ref, ok := v.(*actor.Ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, name)
	}
	return ref, nil
}

// SendDirect bypasses topic routing and enqueues msg straight into the
// named actor's mailbox. Delivery errors (terminated target, full mailbox)
// are returned to the caller.
func (b *Broker) SendDirect(name string, msg any) error {
	ref, err := b.Lookup(name)
	if err != nil {
		return err
	}
	return ref.Send(msg)
}

// Subscribe registers interest of ref in a topic. Subscribing the same ref
// to the same topic twice is a no-op.
func (b *Broker) Subscribe(topic string, ref *actor.Ref) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.topics[topic] {
		if sub.ID() == ref.ID() {
			return
		}
	}
	b.topics[topic] = append(b.topics[topic], ref)
}

// Unsubscribe removes ref from a topic's subscriber list. It stops future
// delivery only; messages already enqueued are not retracted. If ref is the
// last subscriber the topic entry is removed.
func (b *Broker) Unsubscribe(topic string, ref *actor.Ref) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, sub := range subs {
		if sub.ID() == ref.ID() {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

// Publish delivers msg, wrapped in a Delivery, to every actor currently
// subscribed to topic. Delivery is independent and non-transactional:
// failure to reach one subscriber does not roll back delivery to others,
// and each subscriber receives the message at most once. Subscribers found
// terminated are pruned from the table. Publish returns the number of
// subscribers actually reached.
func (b *Broker) Publish(topic string, msg any) int {
	b.mu.RLock()
	subs := make([]*actor.Ref, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	delivered := 0
	var dead []*actor.Ref
	for _, sub := range subs {
		err := sub.Send(Delivery{Topic: topic, Message: msg})
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, actor.ErrTerminated):
			dead = append(dead, sub)
		default:
			log.Printf("Publish to %s on topic %q failed: %v", sub.Name(), topic, err)
		}
	}
	for _, ref := range dead {
		b.Unsubscribe(topic, ref)
	}
	return delivered
}

// Subscribers returns the number of current subscribers on a topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
