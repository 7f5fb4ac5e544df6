/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics declares the Prometheus collectors exported by the
// engine, the worker and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (

	// ENGINE

	HashlifeNodesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_nodes_created_total",
			Help: "Number of canonical quadtree nodes created.",
		},
	)
	HashlifeResultCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashlife_result_cache_hits_total",
			Help: "Number of memoized results reused, by family.",
		},
		[]string{"family"},
	)
	HashlifeResultCacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashlife_result_cache_misses_total",
			Help: "Number of results computed because they were not memoized, by family.",
		},
		[]string{"family"},
	)
	HashlifeCacheClearsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_cache_clears_total",
			Help: "Number of times the node table and result cache were emptied.",
		},
	)
	HashlifeAdvanceTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_advance_total",
			Help: "Number of advance operations.",
		},
	)
	HashlifeAdvanceDurationSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "hashlife_advance_duration_seconds",
			Help: "Duration of the advance operations.",
		},
	)
	HashlifeGenerationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_generations_total",
			Help: "Number of generations advanced.",
		},
	)
	HashlifeLeapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_leaps_total",
			Help: "Number of power-of-two leaps taken by the driver.",
		},
	)
	HashlifeBruteGenerationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_brute_generations_total",
			Help: "Number of remainder generations simulated cell by cell.",
		},
	)

	// WORKER

	HashlifeWorkerRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_worker_runs_total",
			Help: "Number of run requests processed by the worker.",
		},
	)
	HashlifeWorkerCanceledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_worker_canceled_total",
			Help: "Number of run requests whose result was discarded after a cancel.",
		},
	)
	HashlifeWorkerQueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashlife_worker_queue_length",
			Help: "Number of requests waiting for the worker.",
		},
	)

	// SERVER

	HashlifeServerInstances = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashlife_server_instances",
			Help: "Number of simulation servers currently serving in this process.",
		},
	)

	// API

	HashlifeAPIHealthcheckRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hashlife_api_healthcheck_requests_total",
			Help: "The total number of healthcheck api requests",
		},
	)
	HashlifeAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashlife_api_requests_total",
			Help: "The total number of api requests, by handler and status code.",
		},
		[]string{"handler", "code"},
	)

	// PROMETHEUS

	DefaultMetrics = []prometheus.Collector{
		HashlifeNodesCreatedTotal,
		HashlifeResultCacheHitsTotal,
		HashlifeResultCacheMissesTotal,
		HashlifeCacheClearsTotal,
		HashlifeAdvanceTotal,
		HashlifeAdvanceDurationSeconds,
		HashlifeGenerationsTotal,
		HashlifeLeapsTotal,
		HashlifeBruteGenerationsTotal,

		HashlifeWorkerRunsTotal,
		HashlifeWorkerCanceledTotal,
		HashlifeWorkerQueueLength,

		HashlifeServerInstances,

		HashlifeAPIHealthcheckRequestsTotal,
		HashlifeAPIRequestsTotal,
	}
)

// Register adds the default collectors to r. Collectors already
// registered are left in place.
func Register(r prometheus.Registerer) error {
	for _, c := range DefaultMetrics {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
