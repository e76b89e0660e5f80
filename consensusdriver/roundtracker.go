package consensusdriver

import (
	"github.com/luxfi/log"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/ids"
	"github.com/latticedag/consensus/metrics"
	"github.com/latticedag/consensus/reactive"
	"github.com/latticedag/consensus/votes"
)

// RoundTracker is the round-completion observer of §4.5: it tracks the round
// heaviest_milestone last advanced to (started), resets its participant
// bookkeeping on every round advance, and raises completed once the weight
// of distinct committee members observed voting at round started exceeds the
// committee's consensus threshold. Grounded on
// protocol-plugins/consensus-round/src/plugin.rs.
type RoundTracker struct {
	driver  *Driver
	log     log.Logger
	metrics *metrics.ConsensusMetrics

	started          *reactive.Variable[uint64]
	Completed        *reactive.Variable[uint64]
	seenParticipants *reactive.Variable[map[ids.IssuerID]struct{}]
	seenWeight       *reactive.Variable[uint64]
}

func newRoundTracker(d *Driver, logger log.Logger, m *metrics.ConsensusMetrics) *RoundTracker {
	rt := &RoundTracker{
		driver:           d,
		log:              logger,
		metrics:          m,
		started:          reactive.NewVariable[uint64](),
		Completed:        reactive.NewVariable[uint64](),
		seenParticipants: reactive.NewVariable[map[ids.IssuerID]struct{}](),
		seenWeight:       reactive.NewVariable[uint64](),
	}

	d.HeaviestMilestone.Subscribe(func(c *reactive.Change[*votes.Vote]) {
		if c.New != nil {
			rt.updateStarted((*c.New).Round())
		}
	}).Forever()

	return rt
}

// Started returns the round the tracker last reset its bookkeeping for.
func (rt *RoundTracker) Started() (uint64, bool) { return rt.started.Get() }

// observe runs the per-vote update: a vote whose round does not match
// started is ignored; otherwise the vote's issuer, if a committee member, is
// counted once toward seen_weight. The genesis vote has no member issuer, so
// for it every committee member in its votes-by-issuer map is counted instead.
func (rt *RoundTracker) observe(vote *votes.Vote) {
	startedRound, ok := rt.started.Get()
	if !ok || vote.Round() != startedRound {
		return
	}

	comm, ok := rt.driver.Committee.Get()
	if !ok {
		return
	}
	threshold, _ := comm.ConsensusThreshold()

	if issuerID, isUser := vote.Issuer().ID(); isUser {
		if member, ok := comm.Member(issuerID); ok {
			rt.updateSeenParticipants(vote.Round(), member, threshold)
		}
		return
	}

	for _, issuerID := range vote.ReferencedIssuers() {
		if member, ok := comm.Member(issuerID); ok {
			rt.updateSeenParticipants(vote.Round(), member, threshold)
		}
	}
}

func (rt *RoundTracker) updateStarted(round uint64) {
	_ = rt.started.Compute(func(old *uint64) reactive.Outcome[uint64] {
		if old != nil && *old >= round {
			return reactive.Retain(old)
		}

		rt.seenParticipants.Set(make(map[ids.IssuerID]struct{}))
		rt.seenWeight.Set(0)
		rt.log.Debug("round started", "round", round)

		r := round
		return reactive.Notify(old, &r)
	})
}

func (rt *RoundTracker) updateSeenParticipants(round uint64, member committee.Member, threshold uint64) {
	_ = rt.seenParticipants.Compute(func(old *map[ids.IssuerID]struct{}) reactive.Outcome[map[ids.IssuerID]struct{}] {
		participants := make(map[ids.IssuerID]struct{})
		if old != nil {
			for id := range *old {
				participants[id] = struct{}{}
			}
		}

		if _, already := participants[member.ID]; !already {
			participants[member.ID] = struct{}{}
			rt.updateSeenWeight(round, member.Weight, threshold)
		}

		return reactive.Notify[map[ids.IssuerID]struct{}](nil, &participants)
	})
}

func (rt *RoundTracker) updateSeenWeight(round, weight, threshold uint64) {
	_ = rt.seenWeight.Compute(func(old *uint64) reactive.Outcome[uint64] {
		var prev uint64
		if old != nil {
			prev = *old
		}
		newWeight := prev + weight

		if newWeight > threshold {
			rt.Completed.TrackMax(round, func(a, b uint64) bool { return a < b })
			if rt.metrics != nil {
				rt.metrics.CompletedRoundsTotal.Inc()
			}
			rt.log.Info("round completed", "round", round)
		}

		return reactive.Notify(old, &newWeight)
	})
}
