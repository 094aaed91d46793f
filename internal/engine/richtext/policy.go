package richtext

import (
	"fmt"
	"strings"
)

// Policy decides which side of a zero-width insertion point a location
// ends up on when the edit happens exactly at its offset.
type Policy uint8

const (
	// PolicyBefore keeps the location before text inserted at its offset.
	PolicyBefore Policy = iota
	// PolicyAfter moves the location past text inserted at its offset.
	PolicyAfter
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyBefore:
		return "before"
	case PolicyAfter:
		return "after"
	default:
		return "unknown"
	}
}

// ParsePolicy converts "before" or "after" into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before":
		return PolicyBefore, nil
	case "after":
		return PolicyAfter, nil
	default:
		return PolicyBefore, fmt.Errorf("unknown cursor policy %q", s)
	}
}
