// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects adapter instrumentation. All observation methods
// are nil-receiver safe, so render paths never branch on whether
// metrics are enabled.
type Metrics struct {
	renders           *prometheus.CounterVec
	resolveDuration   prometheus.Histogram
	versionMismatches prometheus.Counter
}

// NewMetrics builds the collectors and registers them with reg when
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inertia",
			Name:      "renders_total",
			Help:      "Inertia renders by component and response mode.",
		}, []string{"component", "mode"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inertia",
			Name:      "resolve_duration_seconds",
			Help:      "Property resolution latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		versionMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inertia",
			Name:      "version_mismatches_total",
			Help:      "Requests forced to a full reload by a stale asset version.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.renders, m.resolveDuration, m.versionMismatches)
	}
	return m
}

func (m *Metrics) observeRender(component, mode string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(component, mode).Inc()
}

func (m *Metrics) observeResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(d.Seconds())
}

func (m *Metrics) observeVersionMismatch() {
	if m == nil {
		return
	}
	m.versionMismatches.Inc()
}
