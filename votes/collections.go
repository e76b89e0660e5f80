package votes

import "github.com/latticedag/consensus/ids"

// VoteSet is an unordered collection of distinct votes.
type VoteSet map[*Vote]struct{}

// NewVoteSet builds a VoteSet from the given votes.
func NewVoteSet(vs ...*Vote) VoteSet {
	s := make(VoteSet, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v into the set.
func (s VoteSet) Add(v *Vote) { s[v] = struct{}{} }

// Heaviest returns the vote in the set that is greatest under less, or nil
// for an empty set. Ties cannot occur since Vote.less uses a unique
// sequence number as its final tiebreak.
func (s VoteSet) Heaviest() *Vote {
	var best *Vote
	for v := range s {
		if best == nil || less(best, v) {
			best = v
		}
	}
	return best
}

// Round returns the round of the set's heaviest vote, or 0 for an empty set.
func (s VoteSet) Round() uint64 {
	if h := s.Heaviest(); h != nil {
		return h.round
	}
	return 0
}

// VotesByIssuer groups resolved votes per committee member, keeping only the
// votes relevant to the most advanced round observed for that member.
type VotesByIssuer map[ids.IssuerID]VoteSet

// Fetch returns (creating if necessary) the VoteSet for issuer.
func (v VotesByIssuer) Fetch(issuer ids.IssuerID) VoteSet {
	s, ok := v[issuer]
	if !ok {
		s = make(VoteSet)
		v[issuer] = s
	}
	return s
}

// InsertOrUpdate merges votes into issuer's set under the round-monotone
// rule of §4.4 step 2: a strictly greater round replaces the existing set,
// an equal round unions into it, and a smaller round is discarded.
func (v VotesByIssuer) InsertOrUpdate(issuer ids.IssuerID, incoming VoteSet) {
	target := v.Fetch(issuer)
	currentRound := target.Round()
	newRound := incoming.Round()

	if newRound > currentRound {
		for k := range target {
			delete(target, k)
		}
	}
	if newRound >= currentRound {
		for vote := range incoming {
			target.Add(vote)
		}
	}
}

// VoteRefsByIssuer is the weak-reference counterpart of VotesByIssuer, used
// as the long-lived field stored on a Vote (so a vote never keeps its
// referenced milestones' Votes artificially alive).
type VoteRefsByIssuer map[ids.IssuerID]map[VoteRef]struct{}

// toRefs derives a VoteRefsByIssuer snapshot of v (weak references to every
// vote currently in v).
func toRefs(v VotesByIssuer) VoteRefsByIssuer {
	out := make(VoteRefsByIssuer, len(v))
	for issuer, set := range v {
		refs := make(map[VoteRef]struct{}, len(set))
		for vote := range set {
			refs[voteRefOf(vote)] = struct{}{}
		}
		out[issuer] = refs
	}
	return out
}

// resolve upgrades every weak reference in r, silently dropping any that
// have been evicted (matching the original's best-effort filter_map rather
// than failing the whole aggregation over one stale reference).
func resolve(r VoteRefsByIssuer) VotesByIssuer {
	out := make(VotesByIssuer, len(r))
	for issuer, refs := range r {
		set := make(VoteSet, len(refs))
		for ref := range refs {
			if v := ref.Value(); v != nil {
				set[v] = struct{}{}
			}
		}
		out[issuer] = set
	}
	return out
}

// fromCommittee seeds every committee member with a reference to self,
// matching the genesis vote's bootstrap where every member is considered to
// have already voted for genesis at round 0.
func fromCommittee(members []ids.IssuerID, self VoteRef) VoteRefsByIssuer {
	out := make(VoteRefsByIssuer, len(members))
	for _, id := range members {
		out[id] = map[VoteRef]struct{}{self: {}}
	}
	return out
}

// votesByRound buckets a VotesByIssuer by the round of each issuer's vote
// set, supporting the virtual-voting walk's round-by-round descent.
type votesByRound struct {
	elements map[uint64]VotesByIssuer
	maxRound uint64
}

func newVotesByRound() *votesByRound {
	return &votesByRound{elements: make(map[uint64]VotesByIssuer)}
}

func votesByRoundFrom(src VotesByIssuer) *votesByRound {
	r := newVotesByRound()
	for issuer, set := range src {
		r.fetch(set.Round()).InsertOrUpdate(issuer, set)
	}
	return r
}

func (r *votesByRound) fetch(round uint64) VotesByIssuer {
	if round > r.maxRound {
		r.maxRound = round
	}
	vbi, ok := r.elements[round]
	if !ok {
		vbi = make(VotesByIssuer)
		r.elements[round] = vbi
	}
	return vbi
}

func (r *votesByRound) extend(round uint64, src VotesByIssuer) {
	dst := r.fetch(round)
	for issuer, set := range src {
		dst.InsertOrUpdate(issuer, set)
	}
}
