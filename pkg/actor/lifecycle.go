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

// State is the lifecycle state of an actor instance.
//
// The machine is Created → Starting → Running → Stopping → Stopped, with
// Failed reachable from Starting (pre-start error) and Running (handler
// error or panic). Stopped and Failed are terminal: a failed actor is never
// resurrected in place, only replaced by a fresh instance via supervision.
type State int32

const (
	// Created means the instance exists but its dispatch loop has not
	// begun.
	Created State = iota
	// Starting means the pre-start hook is running.
	Starting
	// Running means the actor is processing messages.
	Running
	// Stopping means the actor is draining its mailbox per its shutdown
	// policy.
	Stopping
	// Stopped means the actor terminated normally. Terminal.
	Stopped
	// Failed means the actor terminated abnormally. Terminal.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == Stopped || s == Failed
}
