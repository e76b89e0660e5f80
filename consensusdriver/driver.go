// Package consensusdriver implements the acceptance-advancement procedure of
// §4.5: it observes every vote the vote builder produces, tracks the
// heaviest milestone and the committee it perceives, advances the latest
// accepted milestone by expanding newly accepted past cones into an ordered
// block sequence, and tracks round completion.
package consensusdriver

import (
	"github.com/luxfi/log"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/dag"
	"github.com/latticedag/consensus/metrics"
	"github.com/latticedag/consensus/reactive"
	"github.com/latticedag/consensus/votes"
)

// AcceptedBlocks is the batch fired once per observation that advances
// latest_accepted_milestone by one or more milestones (§4.5, §8 scenario on
// acceptance batch ordering): Rounds is ordered oldest milestone first, and
// within each round blocks are ordered by reverse BFS position from that
// milestone's block.
type AcceptedBlocks struct {
	BaseHeight uint64
	Rounds     [][]*votes.Metadata
}

// ReorgFunc resolves the case where a newly accepted milestone's prev chain
// does not lead back to the current latest_accepted_milestone (spec.md §9:
// "a faithful rewrite must expose a reorg hook and leave its behavior to the
// caller" — the source itself only ever panics with "TODO: implement
// reorg"). Returning a non-nil error fails the observation, leaving
// latest_accepted_milestone unchanged; returning nil allows the driver to
// proceed as if the chain had verified (the caller is responsible for having
// reconciled any rolled-back acceptance state itself).
type ReorgFunc func(old, new *votes.Vote) error

// RefuseReorg is the default ReorgFunc: it always fails, matching the
// source's unimplemented behavior without panicking.
func RefuseReorg(*votes.Vote, *votes.Vote) error { return ErrReorgRequired }

// Driver holds the four reactive state variables of §4.5 and the
// round-completion tracker that observes one of them.
type Driver struct {
	log     log.Logger
	metrics *metrics.ConsensusMetrics
	reorg   ReorgFunc

	HeaviestMilestone       *reactive.Variable[*votes.Vote]
	LatestAcceptedMilestone *reactive.Variable[*votes.Vote]
	Committee               *reactive.Variable[*committee.Committee]
	AcceptedBlocksEvent     *reactive.Event[*AcceptedBlocks]

	Round *RoundTracker
}

// New builds a Driver. A nil logger defaults to a no-op logger, a nil
// metrics disables metric updates, and a nil reorg defaults to RefuseReorg.
func New(logger log.Logger, m *metrics.ConsensusMetrics, reorg ReorgFunc) *Driver {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	if reorg == nil {
		reorg = RefuseReorg
	}

	d := &Driver{
		log:                     logger,
		metrics:                 m,
		reorg:                   reorg,
		HeaviestMilestone:       reactive.NewVariable[*votes.Vote](),
		LatestAcceptedMilestone: reactive.NewVariable[*votes.Vote](),
		Committee:               reactive.NewVariable[*committee.Committee](),
		AcceptedBlocksEvent:     reactive.NewEvent[*AcceptedBlocks](),
	}
	d.Round = newRoundTracker(d, logger, m)
	return d
}

// ObserveVote runs the per-vote update of §4.5. Only votes carrying a
// milestone drive the driver's state; votes built for validators who were
// not yet eligible to extend the chain this round are ignored, matching the
// source's `if vote.milestone.is_some()` guard.
func (d *Driver) ObserveVote(vote *votes.Vote) {
	if _, err := vote.Milestone(); err != nil {
		return
	}

	d.updateHeaviestMilestone(vote)

	if err := d.advanceAcceptance(vote); err != nil {
		d.log.Warn("acceptance advance failed", "error", err)
	}

	d.Round.observe(vote)
}

func (d *Driver) updateHeaviestMilestone(vote *votes.Vote) {
	_ = d.HeaviestMilestone.Compute(func(old **votes.Vote) reactive.Outcome[*votes.Vote] {
		if old != nil && !votes.Less(*old, vote) {
			return reactive.Retain(old)
		}

		d.log.Debug("heaviest milestone vote updated", "round", vote.Round(), "slot", vote.Slot())
		d.updateCommittee(vote)

		if d.metrics != nil {
			if m, err := vote.Milestone(); err == nil {
				d.metrics.HeaviestMilestoneHeight.Set(float64(m.Height))
			}
			d.metrics.CurrentRound.Set(float64(vote.Round()))
			d.metrics.CommitteeOnlineWeight.Set(float64(vote.Committee().OnlineWeight()))
		}

		newVote := vote
		return reactive.Notify(old, &newVote)
	})
}

func (d *Driver) updateCommittee(vote *votes.Vote) {
	_ = d.Committee.Compute(func(old **committee.Committee) reactive.Outcome[*committee.Committee] {
		if old != nil && vote.Committee().Commitment() == (*old).Commitment() {
			return reactive.Retain(old)
		}
		d.log.Info("committee updated", "commitment", vote.Committee().Commitment())
		if d.metrics != nil && old != nil {
			for _, m := range (*old).Members() {
				if m.Online && !vote.Committee().IsMemberOnline(m.ID) {
					d.metrics.OfflineValidatorsTotal.Inc()
				}
			}
		}
		newCommittee := vote.Committee()
		return reactive.Notify(old, &newCommittee)
	})
}

// advanceAcceptance implements §4.5 step 2: retains latest_accepted_milestone
// unless the vote's accepted milestone strictly advances its height, in
// which case the Δ newly-crossed milestones are verified against the prev
// chain and their past cones ordered and marked accepted.
func (d *Driver) advanceAcceptance(vote *votes.Vote) error {
	newAccepted, err := vote.AcceptedVote()
	if err != nil {
		return err
	}

	return d.LatestAcceptedMilestone.Compute(func(old **votes.Vote) reactive.Outcome[*votes.Vote] {
		if old == nil {
			// First observation: adopt newAccepted without expanding its past
			// cone. Matches the source's update_latest_accepted_milestone,
			// whose `None` arm is a plain Notify with no advance_acceptance
			// call — the very first accepted milestone's blocks are never
			// marked accepted by this path.
			result := newAccepted
			return reactive.Notify[*votes.Vote](nil, &result)
		}

		current := *old
		oldHeight, err := milestoneHeight(current)
		if err != nil {
			return reactive.Fail(old, err)
		}
		newHeight, err := milestoneHeight(newAccepted)
		if err != nil {
			return reactive.Fail(old, err)
		}

		if newHeight <= oldHeight {
			return reactive.Retain(old)
		}

		chain, err := collectPrevChain(newAccepted, newHeight-oldHeight)
		if err != nil {
			return reactive.Fail(old, err)
		}

		oldest := chain[0]
		oldestPrev, err := oldest.PrevVote()
		if err != nil {
			return reactive.Fail(old, err)
		}
		if oldestPrev != current {
			if err := d.reorg(current, newAccepted); err != nil {
				return reactive.Fail(old, err)
			}
		}

		if err := d.fireAcceptedBlocks(oldHeight, chain); err != nil {
			return reactive.Fail(old, err)
		}

		result := newAccepted
		return reactive.Notify(old, &result)
	})
}

// fireAcceptedBlocks expands each milestone's past cone in ascending height
// order, marks each block's accepted signal, and triggers AcceptedBlocksEvent
// once with the full batch.
func (d *Driver) fireAcceptedBlocks(baseHeight uint64, milestones []*votes.Vote) error {
	batch := &AcceptedBlocks{BaseHeight: baseHeight, Rounds: make([][]*votes.Metadata, 0, len(milestones))}

	for heightIndex, milestone := range milestones {
		source, err := milestone.Source()
		if err != nil {
			return err
		}
		cone, err := pastCone(source)
		if err != nil {
			return err
		}

		height := baseHeight + uint64(heightIndex+1)
		ordered := reversed(cone)
		for roundIndex, m := range ordered {
			m.SetAccepted(dag.AcceptanceState{ChainID: 0, Height: height, RoundIndex: uint64(roundIndex)})
			if d.metrics != nil {
				d.metrics.AcceptedBlocksTotal.Inc()
			}
		}

		batch.Rounds = append(batch.Rounds, ordered)
	}

	d.AcceptedBlocksEvent.Trigger(&batch)
	if d.metrics != nil {
		d.metrics.AcceptedBatchesTotal.Inc()
		if len(milestones) > 0 {
			if m, err := milestones[len(milestones)-1].Milestone(); err == nil {
				d.metrics.AcceptedMilestoneHeight.Set(float64(m.Height))
			}
		}
	}
	return nil
}

func milestoneHeight(v *votes.Vote) (uint64, error) {
	m, err := v.Milestone()
	if err != nil {
		return 0, err
	}
	return m.Height, nil
}

// collectPrevChain walks tip's prev chain backward count-1 times, returning
// the count milestones in ascending height order (oldest first).
func collectPrevChain(tip *votes.Vote, count uint64) ([]*votes.Vote, error) {
	chain := make([]*votes.Vote, count)
	current := tip
	for i := int(count) - 1; i >= 0; i-- {
		chain[i] = current
		if i == 0 {
			break
		}
		prev, err := current.PrevVote()
		if err != nil {
			return nil, err
		}
		current = prev
	}
	return chain, nil
}
