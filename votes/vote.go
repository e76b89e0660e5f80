// Package votes implements the virtual-voting algorithm of §4.4: each block
// contributes a Vote built from its parents' votes, and the heaviest chain
// of votes that crosses a BFT weight threshold becomes the accepted
// milestone.
package votes

import (
	"sync/atomic"
	"weak"

	"github.com/latticedag/consensus/committee"
	"github.com/latticedag/consensus/ids"
)

// Issuer identifies who cast a Vote: either the Genesis sentinel or an
// ordinary committee member.
type Issuer struct {
	isGenesis bool
	id        ids.IssuerID
}

// GenesisIssuer is the sentinel issuer of the genesis vote.
func GenesisIssuer() Issuer { return Issuer{isGenesis: true} }

// UserIssuer wraps an ordinary committee member as an Issuer.
func UserIssuer(id ids.IssuerID) Issuer { return Issuer{id: id} }

// IsGenesis reports whether this is the genesis sentinel issuer.
func (i Issuer) IsGenesis() bool { return i.isGenesis }

// ID returns the underlying member ID and whether this is a user issuer.
func (i Issuer) ID() (ids.IssuerID, bool) { return i.id, !i.isGenesis }

// VoteRef is a weak reference to a Vote: it never keeps its target alive and
// must be resolved before use.
type VoteRef = weak.Pointer[Vote]

// Milestone is the block-ordering payload a Vote may carry (§4.4 step 8):
// the accepted/confirmed chain state as of this vote, plus the previous
// milestone in the heaviest-tip chain and the most recent slot boundary.
type Milestone struct {
	Height       uint64
	LeaderWeight uint64
	Prev         VoteRef
	Accepted     VoteRef
	Confirmed    VoteRef
	SlotBoundary VoteRef
}

var voteSeq atomic.Uint64

// Vote is the immutable result of running the vote builder for one block. A
// Vote that does not carry a Milestone reflects a validator who was not yet
// eligible to extend the milestone chain this round (§4.4 step 6).
type Vote struct {
	seq uint64

	source                weak.Pointer[Metadata]
	issuer                Issuer
	time                  uint64
	slot                  uint64
	committee             *committee.Committee
	cumulativeSlotWeight  uint64
	round                 uint64
	referencedRoundWeight uint64
	votesByIssuer         VoteRefsByIssuer
	milestone             *Milestone
}

// Committee satisfies config.VoteView.
func (v *Vote) Committee() *committee.Committee { return v.committee }

// Round satisfies config.VoteView.
func (v *Vote) Round() uint64 { return v.round }

// IssuerID satisfies config.VoteView.
func (v *Vote) IssuerID() (ids.IssuerID, bool) { return v.issuer.ID() }

// Issuer returns who cast this vote.
func (v *Vote) Issuer() Issuer { return v.issuer }

// ReferencedIssuers returns the committee member IDs this vote's
// votes-by-issuer map has an entry for, without resolving any of the
// referenced milestones themselves.
func (v *Vote) ReferencedIssuers() []ids.IssuerID {
	out := make([]ids.IssuerID, 0, len(v.votesByIssuer))
	for id := range v.votesByIssuer {
		out = append(out, id)
	}
	return out
}

// Time returns the vote's block timestamp.
func (v *Vote) Time() uint64 { return v.time }

// Slot returns the vote's slot (as mapped by the configured slot oracle).
func (v *Vote) Slot() uint64 { return v.slot }

// CumulativeSlotWeight returns the running total of online weight observed
// across every slot boundary up to this vote's accepted milestone.
func (v *Vote) CumulativeSlotWeight() uint64 { return v.cumulativeSlotWeight }

// ReferencedRoundWeight returns the accumulated committee weight that has
// referenced a milestone at the vote's round so far.
func (v *Vote) ReferencedRoundWeight() uint64 { return v.referencedRoundWeight }

// Milestone returns the vote's milestone, or ErrNoMilestone if it does not
// carry one.
func (v *Vote) Milestone() (*Milestone, error) {
	if v.milestone == nil {
		return nil, ErrNoMilestone
	}
	return v.milestone, nil
}

// Source resolves the block metadata this vote was built for. Returns
// ErrReferencedVoteEvicted if the block has since been collected.
func (v *Vote) Source() (*Metadata, error) {
	if m := v.source.Value(); m != nil {
		return m, nil
	}
	return nil, ErrReferencedVoteEvicted
}

// weight is the tuple used to order votes by "heaviness": cumulative slot
// weight, then round, then (for milestone-carrying votes) leader weight, or
// the vote's referenced round weight for votes without a milestone.
func (v *Vote) weight() (uint64, uint64, uint64) {
	tiebreak := v.referencedRoundWeight
	if v.milestone != nil {
		tiebreak = v.milestone.LeaderWeight
	}
	return v.cumulativeSlotWeight, v.round, tiebreak
}

// Less gives Vote a total order: weight() first, then insertion sequence as
// a final, always-decisive tiebreak (since two distinct votes never share a
// seq). Used everywhere the original relies on Vote's Ord impl, and exported
// for collaborators (e.g. consensusdriver's heaviest_milestone tracking)
// that need to compare votes without reaching into package internals.
func Less(a, b *Vote) bool { return less(a, b) }

func less(a, b *Vote) bool {
	aw1, aw2, aw3 := a.weight()
	bw1, bw2, bw3 := b.weight()
	if aw1 != bw1 {
		return aw1 < bw1
	}
	if aw2 != bw2 {
		return aw2 < bw2
	}
	if aw3 != bw3 {
		return aw3 < bw3
	}
	return a.seq < b.seq
}

// upgrade resolves a VoteRef, returning ErrReferencedVoteEvicted if the
// target has been collected.
func upgrade(ref VoteRef) (*Vote, error) {
	if v := ref.Value(); v != nil {
		return v, nil
	}
	return nil, ErrReferencedVoteEvicted
}

// pointsTo reports whether ref resolves to exactly v.
func pointsTo(ref VoteRef, v *Vote) bool { return ref.Value() == v }

// voteRefOf makes a weak reference to v.
func voteRefOf(v *Vote) VoteRef { return weak.Make(v) }

// AcceptedVote resolves the vote's accepted-milestone reference.
func (v *Vote) AcceptedVote() (*Vote, error) {
	m, err := v.Milestone()
	if err != nil {
		return nil, err
	}
	return upgrade(m.Accepted)
}

// ConfirmedVote resolves the vote's confirmed-milestone reference.
func (v *Vote) ConfirmedVote() (*Vote, error) {
	m, err := v.Milestone()
	if err != nil {
		return nil, err
	}
	return upgrade(m.Confirmed)
}

// PrevVote resolves the vote's previous-milestone reference.
func (v *Vote) PrevVote() (*Vote, error) {
	m, err := v.Milestone()
	if err != nil {
		return nil, err
	}
	return upgrade(m.Prev)
}

// SlotBoundaryVote resolves the vote's most recent slot-boundary reference.
func (v *Vote) SlotBoundaryVote() (*Vote, error) {
	m, err := v.Milestone()
	if err != nil {
		return nil, err
	}
	return upgrade(m.SlotBoundary)
}

// slotWeightSince walks Milestone.SlotBoundary back from v while the current
// vote's slot is strictly greater than since, adding committee.OnlineWeight()
// of each boundary vote it steps to. v's own committee is not counted, and
// the walk stops after adding the first boundary whose slot is at or below
// since, so a boundary whose slot equals since is included (see DESIGN.md).
func slotWeightSince(v *Vote, since uint64) (uint64, error) {
	var total uint64
	current := v
	for current.slot > since {
		next, err := current.SlotBoundaryVote()
		if err != nil {
			return 0, err
		}
		if next == current {
			break
		}
		current = next
		total += current.committee.OnlineWeight()
	}
	return total, nil
}
