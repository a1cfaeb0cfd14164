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

import "time"

// Intensity caps the restart rate of a supervisor: at most MaxRestarts
// restarts within the sliding Window. Exceeding it escalates the failure to
// the supervisor's own parent.
type Intensity struct {
	MaxRestarts int
	Window      time.Duration
}

// DefaultIntensity mirrors the customary OTP default of five restarts per
// minute.
var DefaultIntensity = Intensity{MaxRestarts: 5, Window: 60 * time.Second}

// restartWindow is a sliding-window counter of restart timestamps. It is
// only touched from the owning supervisor's dispatch loop, so it needs no
// locking.
type restartWindow struct {
	max   int
	span  time.Duration
	times []time.Time
}

func newRestartWindow(i Intensity) *restartWindow {
	return &restartWindow{max: i.MaxRestarts, span: i.Window}
}

// allow prunes timestamps older than the window, then reports whether one
// more restart fits. If it does, the restart is recorded.
func (w *restartWindow) allow(now time.Time) bool {
	cutoff := now.Add(-w.span)
	kept := w.times[:0]
	for _, t := range w.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.times = kept
	if len(w.times) >= w.max {
		return false
	}
	w.times = append(w.times, now)
	return true
}
