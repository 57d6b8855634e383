package retarget

import (
	"errors"
	"fmt"
)

// Reasons for dropping a bone. None of them aborts a conversion.
var (
	ErrMissingTrack         = errors.New("missing track")
	ErrMissingPairedTrack   = errors.New("missing paired track")
	ErrEmptySampleSet       = errors.New("empty sample set")
	ErrUnresolvedTargetBone = errors.New("unresolved target bone")
)

// AlignmentError means converted keyframes and target nodes went out of step.
// The clip would animate wrong bones, so it is never returned.
type AlignmentError struct {
	Nodes int
	Keys  int
	Track string
}

func (e *AlignmentError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("alignment error: track %q does not resolve to a target node", e.Track)
	}
	return fmt.Sprintf("alignment error: %d target nodes for %d keyframe lists", e.Nodes, e.Keys)
}
