package votes

import "errors"

// Sentinel errors for every case of §7. Compared with errors.Is, following
// the teacher's own idiom rather than a typed error hierarchy.
var (
	ErrBlockNotFound                  = errors.New("votes: block not found")
	ErrReferencedVoteEvicted          = errors.New("votes: referenced vote evicted")
	ErrVotesMustNotBeEmpty            = errors.New("votes: votes must not be empty")
	ErrNoMilestone                    = errors.New("votes: no milestone")
	ErrNoAcceptedMilestoneInPastCone  = errors.New("votes: no accepted milestone in past cone")
	ErrNoConfirmedMilestoneInPastCone = errors.New("votes: no confirmed milestone in past cone")
	ErrTimeMustIncrease               = errors.New("votes: time must increase")
	ErrNoCommitmentExists             = errors.New("votes: no commitment exists")
)
