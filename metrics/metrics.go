// Package metrics instruments document stores with Prometheus collectors.
package metrics

import (
	"context"
	"time"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campus"

// Read outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type instrumented struct {
	store    ref.Store
	reads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Instrument returns a store that records reads of the given store.
//
// The collectors are registered with reg. If an equal collector is already
// registered it is reused, so the same registerer can instrument many stores.
func Instrument(store ref.Store, reg prometheus.Registerer) ref.Store {
	reads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Total number of document reads by outcome",
		},
		[]string{"collection", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "read_duration_seconds",
			Help:      "Time taken to read a document",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"collection"},
	)
	reads = register(reg, reads)
	duration = register(reg, duration)
	return &instrumented{
		store:    store,
		reads:    reads,
		duration: duration,
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (s *instrumented) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	start := time.Now()
	doc, found, err := s.store.Get(ctx, collection, id)
	s.duration.WithLabelValues(collection).Observe(time.Since(start).Seconds())

	outcome := OutcomeFound
	switch {
	case err != nil:
		outcome = OutcomeError
	case !found:
		outcome = OutcomeNotFound
	}
	s.reads.WithLabelValues(collection, outcome).Inc()
	return doc, found, err
}

// Set forwards writes when the underlying store implements ref.Writer.
func (s *instrumented) Set(ctx context.Context, collection, id string, doc document.Document) error {
	w, ok := s.store.(ref.Writer)
	if !ok {
		return ErrReadOnly
	}
	return w.Set(ctx, collection, id, doc)
}
