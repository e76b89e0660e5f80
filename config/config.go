// Package config carries the external hook surface of §6: genesis
// parameters, the slot oracle, the offline threshold, committee selection
// and leader weighting, each built either from a fixed builtin policy or a
// caller-supplied function, following the original's two-variant
// builtin/custom dispatch shape (committee_selection.rs, leader_rotation.rs,
// slot_duration.rs).
package config

import (
	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/ids"
)

// VoteView is the minimal read-only view of an in-progress or completed vote
// that hook strategies need. Defined here (rather than importing votes
// directly) to avoid a config<->votes import cycle; votes.Vote satisfies it.
type VoteView interface {
	Committee() *committee.Committee
	Round() uint64
	IssuerID() (ids.IssuerID, bool)
}

// CommitteeSelection picks the committee snapshot a vote should perceive,
// either a fixed committee (inherited verbatim from the preceding vote once
// one exists) or a custom strategy.
type CommitteeSelection struct {
	fixed  *committee.Committee
	custom func(cfg *Config, vote VoteView) *committee.Committee
}

// FixedCommittee returns a CommitteeSelection that always uses c for the
// genesis vote and inherits the prior vote's committee thereafter.
func FixedCommittee(c *committee.Committee) CommitteeSelection {
	return CommitteeSelection{fixed: c}
}

// CustomCommitteeSelection wraps an arbitrary committee-selection strategy.
func CustomCommitteeSelection(f func(cfg *Config, vote VoteView) *committee.Committee) CommitteeSelection {
	return CommitteeSelection{custom: f}
}

func (s CommitteeSelection) dispatch(cfg *Config, vote VoteView) *committee.Committee {
	if s.custom != nil {
		return s.custom(cfg, vote)
	}
	if vote != nil {
		return vote.Committee()
	}
	return s.fixed
}

// LeaderRotation picks the leader weight hook used in vote-builder step 8.
type LeaderRotation struct {
	roundRobin bool
	custom     func(cfg *Config, vote VoteView) uint64
}

// RoundRobinLeader rotates leadership across committee members by index.
func RoundRobinLeader() LeaderRotation { return LeaderRotation{roundRobin: true} }

// CustomLeaderRotation wraps an arbitrary leader-weighting strategy.
func CustomLeaderRotation(f func(cfg *Config, vote VoteView) uint64) LeaderRotation {
	return LeaderRotation{custom: f}
}

func (r LeaderRotation) dispatch(cfg *Config, vote VoteView) uint64 {
	if r.custom != nil {
		return r.custom(cfg, vote)
	}
	issuer, ok := vote.IssuerID()
	if !ok {
		return 0
	}
	comm := vote.Committee()
	member, ok := comm.Member(issuer)
	if !ok {
		return 0
	}
	size := uint64(comm.Size())
	if size == 0 {
		return 0
	}
	return (member.Index + vote.Round() - 1) % size
}

// SlotOracle maps a timestamp to a slot number, either on a fixed static
// duration or via a custom strategy.
type SlotOracle struct {
	staticDuration uint64
	custom         func(cfg *Config, time uint64) uint64
}

// StaticSlotDuration maps time to slot as time - genesis_time/duration,
// matching the original's exact (unparenthesized) precedence.
func StaticSlotDuration(duration uint64) SlotOracle {
	return SlotOracle{staticDuration: duration}
}

// CustomSlotOracle wraps an arbitrary slot-oracle strategy.
func CustomSlotOracle(f func(cfg *Config, time uint64) uint64) SlotOracle {
	return SlotOracle{custom: f}
}

func (o SlotOracle) dispatch(cfg *Config, time uint64) uint64 {
	if o.custom != nil {
		return o.custom(cfg, time)
	}
	if o.staticDuration == 0 {
		return time
	}
	return time - cfg.GenesisTime()/o.staticDuration
}

// Config is the full hook surface of §6.
type Config struct {
	GenesisBlockID    ids.BlockID
	GenesisTimeValue  uint64
	OfflineThresholdV uint64

	Committee CommitteeSelection
	Leader    LeaderRotation
	Slot      SlotOracle
}

// GenesisTime returns the configured genesis timestamp.
func (c *Config) GenesisTime() uint64 { return c.GenesisTimeValue }

// OfflineThreshold returns the configured number of slots of silence before
// a validator is flagged offline.
func (c *Config) OfflineThreshold() uint64 { return c.OfflineThresholdV }

// SlotOf maps time to its slot via the configured oracle.
func (c *Config) SlotOf(time uint64) uint64 { return c.Slot.dispatch(c, time) }

// SelectCommittee maps the preceding vote (nil for genesis) to the committee
// snapshot the new vote should perceive.
func (c *Config) SelectCommittee(vote VoteView) *committee.Committee {
	return c.Committee.dispatch(c, vote)
}

// LeaderWeight dispatches the leader-weighting hook for an in-progress vote.
func (c *Config) LeaderWeight(vote VoteView) uint64 {
	return c.Leader.dispatch(c, vote)
}
