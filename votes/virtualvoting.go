package votes

// runVirtualVoting walks votesByIssuer backward round by round, tracking
// per-vote weight, until some vote's tracked weight crosses threshold: that
// vote becomes the accepted milestone (§4.4 step 7). It then walks forward
// from the accepted milestone through the heaviest child at each level to
// find the heaviest tip.
func runVirtualVoting(votesByIssuer VotesByIssuer, comm committeeWeigher, threshold uint64) (accepted *Vote, heaviestTip *Vote, err error) {
	rounds := votesByRoundFrom(votesByIssuer)
	wt := newWeightTracker(comm)
	children := make(map[*Vote]VoteSet)

	for round := rounds.maxRound; ; round-- {
		next := make(VotesByIssuer)
		var heaviestWeight uint64
		var heaviestVote *Vote
		haveHeaviest := false

		for issuer, issuerVotes := range rounds.fetch(round) {
			for v := range issuerVotes {
				w := wt.weightEntry(v, issuer)
				if !haveHeaviest || w > heaviestWeight || (w == heaviestWeight && less(heaviestVote, v)) {
					heaviestWeight, heaviestVote, haveHeaviest = w, v, true
				}

				if v.milestone == nil {
					continue
				}
				if pointsTo(v.milestone.Prev, v) {
					continue
				}
				target, uerr := upgrade(v.milestone.Prev)
				if uerr != nil {
					return nil, nil, uerr
				}
				children[target] = unionAdd(children[target], v)
				next.Fetch(issuer).Add(target)
			}
		}

		if haveHeaviest && heaviestWeight >= threshold {
			accepted = heaviestVote
			break
		}
		if round == 0 || len(next) == 0 {
			return nil, nil, ErrNoConfirmedMilestoneInPastCone
		}
		rounds.extend(round-1, next)
	}

	heaviestTip = accepted
	for {
		childSet, ok := children[heaviestTip]
		if !ok || len(childSet) == 0 {
			break
		}
		heaviestTip = wt.heaviestVote(childSet)
	}

	return accepted, heaviestTip, nil
}

func unionAdd(set VoteSet, v *Vote) VoteSet {
	if set == nil {
		set = make(VoteSet)
	}
	set.Add(v)
	return set
}
