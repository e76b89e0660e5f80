// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires the consensus driver's observable state into
// Prometheus: milestone heights, round advancement, acceptance batches, and
// committee online weight.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides consensus metrics
type Metrics struct {
	Registry prometheus.Registerer
}

// NewMetrics creates new metrics instance
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Registry: reg,
	}
}

// Register registers a prometheus collector
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}

// ConsensusMetrics is the fixed set of collectors the consensus driver
// updates as votes arrive (§4.5). All counters/gauges are registered eagerly
// so scraping never observes a missing series.
type ConsensusMetrics struct {
	HeaviestMilestoneHeight prometheus.Gauge
	AcceptedMilestoneHeight prometheus.Gauge
	AcceptedBlocksTotal     prometheus.Counter
	AcceptedBatchesTotal    prometheus.Counter
	CurrentRound            prometheus.Gauge
	CompletedRoundsTotal    prometheus.Counter
	CommitteeOnlineWeight   prometheus.Gauge
	OfflineValidatorsTotal  prometheus.Counter
}

// NewConsensusMetrics builds and registers a ConsensusMetrics against reg. A
// nil reg uses prometheus.NewRegistry() unexposed to any collector elsewhere,
// so callers that don't care about scraping can still construct a Driver.
func NewConsensusMetrics(reg prometheus.Registerer) *ConsensusMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &ConsensusMetrics{
		HeaviestMilestoneHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consensus",
			Name:      "heaviest_milestone_height",
			Help:      "Height of the heaviest milestone vote observed.",
		}),
		AcceptedMilestoneHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consensus",
			Name:      "accepted_milestone_height",
			Help:      "Height of the latest accepted milestone.",
		}),
		AcceptedBlocksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "accepted_blocks_total",
			Help:      "Total number of blocks marked accepted.",
		}),
		AcceptedBatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "accepted_batches_total",
			Help:      "Total number of accepted_blocks events fired.",
		}),
		CurrentRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consensus",
			Name:      "current_round",
			Help:      "Round of the heaviest milestone vote observed.",
		}),
		CompletedRoundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "completed_rounds_total",
			Help:      "Total number of rounds whose seen weight crossed the committee threshold.",
		}),
		CommitteeOnlineWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "consensus",
			Name:      "committee_online_weight",
			Help:      "Online weight of the committee perceived by the heaviest milestone vote.",
		}),
		OfflineValidatorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "offline_validators_total",
			Help:      "Total number of validator offline-flagging transitions observed.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.HeaviestMilestoneHeight,
		m.AcceptedMilestoneHeight,
		m.AcceptedBlocksTotal,
		m.AcceptedBatchesTotal,
		m.CurrentRound,
		m.CompletedRoundsTotal,
		m.CommitteeOnlineWeight,
		m.OfflineValidatorsTotal,
	} {
		reg.Register(c) //nolint:errcheck // duplicate registration is harmless for a dedicated registry
	}

	return m
}
