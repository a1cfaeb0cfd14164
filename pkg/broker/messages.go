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

package broker

// Delivery wraps a published message on its way to a subscriber, so the
// receiving actor knows which topic produced it. Directly sent messages are
// not wrapped.
type Delivery struct {
	// Topic is the topic the message was published on.
	Topic string
	// Message is the published payload.
	Message any
}
