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

import "github.com/turtacn/actor-go/pkg/actor"

// StartChild asks a running supervisor to add and start one more child.
// Sent with SendAndWait, the reply is the start error or nil.
type StartChild struct {
	Spec ChildSpec
}

// StopChild asks a running supervisor to stop a child and remove it from
// the child table. Sent with SendAndWait, the reply is an error or nil.
type StopChild struct {
	ID string
	// Policy overrides the child's configured shutdown policy when set.
	Policy *actor.ShutdownPolicy
}

// ListChildren asks a running supervisor for a snapshot of its child table.
// Must be sent with SendAndWait; the reply is a []ChildInfo.
type ListChildren struct{}

// ChildInfo is one row of a ListChildren reply.
type ChildInfo struct {
	ID       string
	Ref      *actor.Ref
	Restart  RestartPolicy
	Restarts int
	State    actor.State
}
