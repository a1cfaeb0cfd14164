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

// package storage provides a generic key-value store interface and an
// in-memory implementation. The broker uses it as the backing table for its
// named-actor registry; hosts can plug in their own implementation to share
// the registry with other components.
package storage

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when a key is not found in the store.
	ErrNotFound = errors.New("not found")
)

// Store defines the interface for a generic key-value store. It is
// implementation-agnostic; the runtime only requires the operations below
// and that they are safe for concurrent use.
type Store interface {
	// Get retrieves a value from the store by its key.
	// If the key is not found, it returns nil and ErrNotFound.
	Get(key string) (interface{}, error)
	// Set adds or updates a value in the store.
	Set(key string, value interface{}) error
	// Delete removes a value from the store by its key.
	Delete(key string) error
	// Range calls fn for each entry until fn returns false. The order is
	// unspecified.
	Range(fn func(key string, value interface{}) bool)
}

// MemStore is an in-memory implementation of the Store interface. It uses a
// map guarded by a RWMutex and is safe for concurrent use.
type MemStore struct {
	data map[string]interface{}
	mu   sync.RWMutex
}

// NewMemStore creates and returns a new instance of MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string]interface{}),
	}
}

// Get retrieves a value from the in-memory store.
func (s *MemStore) Get(key string) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set adds or updates a value in the in-memory store.
func (s *MemStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes a value from the in-memory store. Deleting a missing key
// is not an error.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Range calls fn for each entry over a snapshot of the keys, so fn may
// safely mutate the store.
func (s *MemStore) Range(fn func(key string, value interface{}) bool) {
	s.mu.RLock()
	snapshot := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.mu.RUnlock()
	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}
