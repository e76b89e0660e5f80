package consensusdriver

import "errors"

// ErrReorgRequired is returned by the default ReorgFunc when a newly
// accepted milestone's prev chain does not lead back to the current
// latest_accepted_milestone (spec.md §9 open question: the source only ever
// panics with "TODO: implement reorg"; a faithful rewrite exposes a hook
// instead and leaves the policy to the caller).
var ErrReorgRequired = errors.New("consensusdriver: reorg required, no policy configured")

// ErrBlockMetadataEvicted is returned when a past-cone walk's parent weak
// reference has been collected before it could be resolved.
var ErrBlockMetadataEvicted = errors.New("consensusdriver: block metadata evicted")
