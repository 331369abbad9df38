// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"outfitly/internal/imaging"
)

// Saga steps used as metric labels and log fields.
const (
	stepMainImage     = "main_image"
	stepCategories    = "categories"
	stepClearCategory = "clear_categories"
	stepItemRow       = "item_row"
	stepItemImage     = "item_image"
	stepDeleteItem    = "delete_item"
	stepBlobCleanup   = "blob_cleanup"
)

// Metrics counts the outcomes that never reach the caller: compensations,
// swallowed errors and counter drift. It also observes image ingestion.
type Metrics struct {
	compensations  *prometheus.CounterVec
	swallowed      *prometheus.CounterVec
	counterRetries prometheus.Counter
	counterDrift   prometheus.Counter
	ingests        *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outfitly",
			Name:      "saga_compensations_total",
			Help:      "Create sagas rolled back by deleting the parent outfit, by failing step.",
		}, []string{"step"}),
		swallowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outfitly",
			Name:      "saga_swallowed_errors_total",
			Help:      "Errors logged and ignored during a saga, by operation and step.",
		}, []string{"op", "step"}),
		counterRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outfitly",
			Name:      "saved_counter_retries_total",
			Help:      "Saved counter adjustments re-issued after a first failure.",
		}),
		counterDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outfitly",
			Name:      "saved_counter_drift_total",
			Help:      "Saved toggles whose counter adjustment failed twice.",
		}),
		ingests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outfitly",
			Name:      "image_ingest_duration_seconds",
			Help:      "Image ingestion latency by outcome (ok or the failing stage).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.compensations, m.swallowed, m.counterRetries, m.counterDrift, m.ingests)
	return m
}

// ObserveIngest implements imaging.Observer.
func (m *Metrics) ObserveIngest(stage imaging.Stage, d time.Duration) {
	outcome := "ok"
	if stage != "" {
		outcome = string(stage)
	}
	m.ingests.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) compensation(step string) {
	m.compensations.WithLabelValues(step).Inc()
}

func (m *Metrics) swallow(op, step string) {
	m.swallowed.WithLabelValues(op, step).Inc()
}
