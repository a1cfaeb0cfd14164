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

// package metrics provides Prometheus metrics for the actor runtime.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActorsSpawnedTotal counts actors that reached the Running state.
	ActorsSpawnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_actors_spawned_total",
		Help: "The total number of actors spawned.",
	})

	// ActorsRunning tracks the number of currently live actors.
	ActorsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "actor_go_actors_running",
		Help: "The number of actors currently running.",
	})

	// MessagesProcessedTotal counts messages dispatched to handlers.
	MessagesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_messages_processed_total",
		Help: "The total number of messages dispatched to actor handlers.",
	})

	// HandlerFailuresTotal counts handler errors and panics, each of which
	// terminates an actor instance.
	HandlerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_handler_failures_total",
		Help: "The total number of fatal handler errors.",
	})

	// MailboxDroppedTotal counts messages discarded by bounded mailboxes
	// under the drop-newest backpressure policy.
	MailboxDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_mailbox_dropped_total",
		Help: "The total number of messages dropped by full mailboxes.",
	})

	// SupervisorRestartsTotal counts child restarts performed by
	// supervisors, labeled by child id.
	SupervisorRestartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_go_supervisor_restarts_total",
		Help: "The total number of times a supervised actor has been restarted.",
	},
		[]string{"child_id"},
	)

	// SupervisorEscalationsTotal counts restart-rate-limit escalations.
	SupervisorEscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_supervisor_escalations_total",
		Help: "The total number of failures escalated past a supervisor's restart limit.",
	})
)

// Serve starts an HTTP server to expose the Prometheus metrics.
func Serve(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	log.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logFatalf("Metrics server failed: %v", err)
	}
}

// logFatalf can be replaced by tests to prevent process exit.
var logFatalf = log.Fatalf
