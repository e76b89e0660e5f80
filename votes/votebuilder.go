package votes

import (
	"weak"

	"github.com/latticedag/consensus/config"
	"github.com/latticedag/consensus/ids"
)

// BuildGenesis constructs the self-referential genesis vote: every
// milestone field and every committee member's initial "already voted"
// entry point back at the vote itself (§4.3/§4.4, §9 Design Notes' two-phase
// allocate-then-initialize pattern). Go's addressable structs make this
// simpler than the original's Arc::new_cyclic: the vote is allocated first,
// then its self-referential fields are filled in directly.
func BuildGenesis(cfg *config.Config) *Vote {
	comm := cfg.SelectCommittee(nil)

	v := &Vote{
		seq:                   voteSeq.Add(1),
		issuer:                GenesisIssuer(),
		time:                  cfg.GenesisTime(),
		slot:                  0,
		committee:             comm,
		cumulativeSlotWeight:  0,
		round:                 0,
		referencedRoundWeight: ^uint64(0),
	}

	self := voteRefOf(v)
	v.milestone = &Milestone{
		Height:       0,
		LeaderWeight: ^uint64(0),
		Prev:         self,
		Accepted:     self,
		Confirmed:    self,
		SlotBoundary: self,
	}

	memberIDs := make([]ids.IssuerID, 0, comm.Size())
	for _, m := range comm.Members() {
		memberIDs = append(memberIDs, m.ID)
	}
	v.votesByIssuer = fromCommittee(memberIDs, self)

	return v
}

// Build runs the eight-step vote-building algorithm of §4.4 for a block
// issued by issuer at time, given the resolved votes of its parents. source
// is the block's own metadata, stored as a weak reference on the result.
func Build(source *Metadata, issuer ids.IssuerID, time uint64, parentVotes VoteSet, cfg *config.Config) (*Vote, error) {
	heaviest := parentVotes.Heaviest()
	if heaviest == nil {
		return nil, ErrVotesMustNotBeEmpty
	}

	v := &Vote{
		seq:                   voteSeq.Add(1),
		source:                weak.Make(source),
		issuer:                UserIssuer(issuer),
		time:                  time,
		slot:                  cfg.SlotOf(time),
		committee:             heaviest.committee,
		cumulativeSlotWeight:  heaviest.cumulativeSlotWeight,
		round:                 heaviest.round,
		referencedRoundWeight: 0,
	}

	referencedMilestones, latestVote, err := aggregateVotes(v, parentVotes)
	if err != nil {
		return nil, err
	}

	if v.time < latestVote.time {
		return nil, ErrTimeMustIncrease
	}

	if v.slot > latestVote.slot {
		for _, member := range offlineValidators(v, referencedMilestones, cfg) {
			v.committee = v.committee.SetOnline(member, false)
		}
	}

	// TODO: rotate committee via cfg.SelectCommittee once per-round rotation
	// is wired up; today the committee is only ever inherited or adjusted
	// for online/offline transitions.

	validator, isMember := v.committee.Member(issuer)
	if !isMember {
		v.votesByIssuer = toRefs(referencedMilestones)
		return v, nil
	}

	return buildValidatorPerception(v, validator.ID, validator.Weight, referencedMilestones, cfg)
}

func buildValidatorPerception(v *Vote, validatorID ids.IssuerID, validatorWeight uint64, referencedMilestones VotesByIssuer, cfg *config.Config) (*Vote, error) {
	v.committee = v.committee.SetOnline(validatorID, true)

	threshold, doesConfirm := v.committee.ConsensusThreshold()

	existing, hasVoted := referencedMilestones[validatorID]
	eligible := !hasVoted || existing.Round() < v.round || v.referencedRoundWeight >= threshold
	if !eligible {
		v.votesByIssuer = toRefs(referencedMilestones)
		return v, nil
	}

	accepted, heaviestTip, err := runVirtualVoting(referencedMilestones, v.committee, threshold)
	if err != nil {
		return nil, err
	}

	if v.referencedRoundWeight+validatorWeight >= threshold {
		v.round++
		v.referencedRoundWeight = validatorWeight
	}

	heaviestTipMilestone, err := heaviestTip.Milestone()
	if err != nil {
		return nil, err
	}

	var confirmedRef VoteRef
	if doesConfirm {
		confirmedRef = voteRefOf(accepted)
	} else {
		confirmedRef = heaviestTipMilestone.Confirmed
	}

	var slotBoundaryRef VoteRef
	if v.slot > heaviestTip.slot {
		slotBoundaryRef = voteRefOf(heaviestTip)
	} else {
		slotBoundaryRef = heaviestTipMilestone.SlotBoundary
	}

	v.milestone = &Milestone{
		Height:       heaviestTipMilestone.Height + 1,
		LeaderWeight: cfg.LeaderWeight(v),
		Prev:         voteRefOf(heaviestTip),
		Accepted:     voteRefOf(accepted),
		Confirmed:    confirmedRef,
		SlotBoundary: slotBoundaryRef,
	}

	prevAccepted, err := heaviestTipMilestone.resolveAccepted()
	if err != nil {
		return nil, err
	}
	weightSince, err := slotWeightSince(accepted, prevAccepted.slot)
	if err != nil {
		return nil, err
	}
	v.cumulativeSlotWeight += weightSince

	referencedMilestones[validatorID] = NewVoteSet(v)
	v.votesByIssuer = toRefs(referencedMilestones)

	return v, nil
}

// resolveAccepted upgrades a milestone's Accepted reference.
func (m *Milestone) resolveAccepted() (*Vote, error) { return upgrade(m.Accepted) }

// aggregateVotes implements §4.4 step 2: merges every parent vote's
// referenced milestones into a fresh VotesByIssuer under the round-monotone
// rule, counts each committee member's weight toward the builder's
// referenced-round weight the first time their milestone at the builder's
// round is seen, and returns the latest (by time) parent vote.
func aggregateVotes(v *Vote, parentVotes VoteSet) (VotesByIssuer, *Vote, error) {
	referenced := make(VotesByIssuer)
	seenVoters := make(map[ids.IssuerID]struct{})

	var latest *Vote
	for parent := range parentVotes {
		if latest == nil || parent.time > latest.time || (parent.time == latest.time && less(latest, parent)) {
			latest = parent
		}

		for issuer, refs := range parent.votesByIssuer {
			if _, isMember := v.committee.Member(issuer); !isMember {
				continue
			}

			milestones := make(VoteSet)
			for ref := range refs {
				vote := ref.Value()
				if vote == nil {
					continue
				}
				if vote.round == v.round {
					if _, already := seenVoters[issuer]; !already {
						seenVoters[issuer] = struct{}{}
						v.referencedRoundWeight += v.committee.MemberWeight(issuer)
					}
				}
				milestones.Add(vote)
			}
			referenced.InsertOrUpdate(issuer, milestones)
		}
	}

	if latest == nil {
		return nil, nil, ErrVotesMustNotBeEmpty
	}
	return referenced, latest, nil
}

// offlineValidators implements §4.4 step 4: every online committee member
// whose most recently referenced milestone is older than the offline
// threshold (saturating at zero per §9) is flagged offline.
func offlineValidators(v *Vote, referenced VotesByIssuer, cfg *config.Config) []ids.IssuerID {
	var threshold uint64
	if v.slot > cfg.OfflineThreshold() {
		threshold = v.slot - cfg.OfflineThreshold()
	}

	var offline []ids.IssuerID
	for _, member := range v.committee.Members() {
		if !member.Online {
			continue
		}
		stillOnline := false
		for vote := range referenced[member.ID] {
			if vote.slot >= threshold {
				stillOnline = true
				break
			}
		}
		if !stillOnline {
			offline = append(offline, member.ID)
		}
	}
	return offline
}
