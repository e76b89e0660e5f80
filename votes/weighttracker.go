package votes

import "github.com/latticedag/consensus/ids"

// weightTracker accumulates, per vote, the committee weight of every
// distinct issuer seen referencing it during one virtual-voting walk
// (§4.4 step 7), so that a weight is never double-counted for an issuer
// that references the same vote more than once.
type weightTracker struct {
	committee   committeeWeigher
	weights     map[*Vote]uint64
	seenIssuers map[*Vote]map[ids.IssuerID]struct{}
}

// committeeWeigher is the minimal committee surface the tracker needs.
type committeeWeigher interface {
	MemberWeight(ids.IssuerID) uint64
}

func newWeightTracker(c committeeWeigher) *weightTracker {
	return &weightTracker{
		committee:   c,
		weights:     make(map[*Vote]uint64),
		seenIssuers: make(map[*Vote]map[ids.IssuerID]struct{}),
	}
}

// weightEntry records issuer's weight against vote the first time it is
// seen for that vote, returning the vote's running tracked weight.
func (wt *weightTracker) weightEntry(vote *Vote, issuer ids.IssuerID) uint64 {
	if wt.issuerAlreadyCounted(vote, issuer) {
		return wt.weight(vote)
	}
	wt.weights[vote] += wt.committee.MemberWeight(issuer)
	return wt.weights[vote]
}

func (wt *weightTracker) weight(vote *Vote) uint64 { return wt.weights[vote] }

// heaviestVote returns the member of votes with the greatest tracked weight,
// breaking ties via the vote's own total order (weight tuple + sequence).
func (wt *weightTracker) heaviestVote(votes VoteSet) *Vote {
	var best *Vote
	for v := range votes {
		if best == nil {
			best = v
			continue
		}
		if wt.weight(v) > wt.weight(best) || (wt.weight(v) == wt.weight(best) && less(best, v)) {
			best = v
		}
	}
	return best
}

func (wt *weightTracker) issuerAlreadyCounted(vote *Vote, issuer ids.IssuerID) bool {
	seen, ok := wt.seenIssuers[vote]
	if !ok {
		seen = make(map[ids.IssuerID]struct{})
		wt.seenIssuers[vote] = seen
	}
	if _, already := seen[issuer]; already {
		return true
	}
	seen[issuer] = struct{}{}
	return false
}
