// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package verify

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer is notified of the progress of a run. It must be safe for
// concurrent use.
type Observer interface {
	StatesExplored(n int)
	ActionsRejected(n int)
	PropertyViolated(property string)
	SampleCompleted()
}

type noopObserver struct{}

func (noopObserver) StatesExplored(int)      {}
func (noopObserver) ActionsRejected(int)     {}
func (noopObserver) PropertyViolated(string) {}
func (noopObserver) SampleCompleted()        {}

// Prometheus is an observer exporting prometheus metrics.
type Prometheus struct {
	states     prometheus.Counter
	rejected   prometheus.Counter
	violations *prometheus.CounterVec
	samples    prometheus.Counter
}

// NewPrometheus creates the metrics and registers them with the
// registerer given.
func NewPrometheus(registerer prometheus.Registerer) (metrics *Prometheus, err error) {
	metrics = new(Prometheus)
	collectorsToRegister := make(map[string]prometheus.Collector)

	metrics.states = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "alpenglow_verify",
		Name:      "states_explored_total",
		Help:      "states checked by the exploration",
	})
	collectorsToRegister["states counter"] = metrics.states

	metrics.rejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "alpenglow_verify",
		Name:      "actions_rejected_total",
		Help:      "actions rejected by the transition function",
	})
	collectorsToRegister["rejected actions counter"] = metrics.rejected

	metrics.violations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alpenglow_verify",
		Name:      "property_violations_total",
		Help:      "property violations found, by property",
	}, []string{"property"})
	collectorsToRegister["violations counter"] = metrics.violations

	metrics.samples = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "alpenglow_verify",
		Name:      "samples_completed_total",
		Help:      "random executions completed in statistical mode",
	})
	collectorsToRegister["samples counter"] = metrics.samples

	for collectorName, collectorToRegister := range collectorsToRegister {
		err = registerer.Register(collectorToRegister)
		if err != nil && !errors.As(err, &prometheus.AlreadyRegisteredError{}) {
			return nil, fmt.Errorf("cannot register %s: %w", collectorName, err)
		}
	}

	return metrics, nil
}

func (m *Prometheus) StatesExplored(n int) {
	m.states.Add(float64(n))
}

func (m *Prometheus) ActionsRejected(n int) {
	m.rejected.Add(float64(n))
}

func (m *Prometheus) PropertyViolated(property string) {
	m.violations.WithLabelValues(property).Inc()
}

func (m *Prometheus) SampleCompleted() {
	m.samples.Inc()
}
