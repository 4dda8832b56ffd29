package hdbscan

import (
	"fmt"
	"strings"
)

// ConstraintType is the kind of a pairwise constraint.
type ConstraintType int

const (
	// MustLink asks for both points to end up in the same cluster.
	MustLink ConstraintType = iota + 1
	// CannotLink asks for the points to end up apart.
	CannotLink
)

func (c ConstraintType) String() string {
	switch c {
	case MustLink:
		return "ml"
	case CannotLink:
		return "cl"
	default:
		return fmt.Sprintf("ConstraintType(%d)", int(c))
	}
}

// ParseConstraintType parses "ml" / "must-link" or "cl" / "cannot-link".
func ParseConstraintType(s string) (ConstraintType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ml", "must-link", "must_link":
		return MustLink, nil
	case "cl", "cannot-link", "cannot_link":
		return CannotLink, nil
	}
	return 0, validationErrorf("constraint", "unknown constraint type %q", s)
}

// Constraint relates two point indices.
type Constraint struct {
	A, B int
	Type ConstraintType
}

func validateConstraints(cons []Constraint, n int) error {
	for i, c := range cons {
		if c.A < 0 || c.A >= n || c.B < 0 || c.B >= n {
			return validationErrorf("constraints", "constraint %d references point outside [0, %d)", i, n)
		}
		if c.A == c.B {
			return validationErrorf("constraints", "constraint %d links point %d to itself", i, c.A)
		}
		if c.Type != MustLink && c.Type != CannotLink {
			return validationErrorf("constraints", "constraint %d has unknown type %d", i, int(c.Type))
		}
	}
	return nil
}

// constraintsSatisfied counts, per condensed node, how many constraint
// endpoints the node satisfies. A point belongs to every ancestor of the node
// it fell out of. A must-link pair adds 2 to every cluster holding both
// points; a cannot-link pair adds 1 to every cluster holding exactly one of
// them. Returns nil when there are no constraints.
func constraintsSatisfied(t *CondensedTree, cons []Constraint) []int {
	if len(cons) == 0 {
		return nil
	}

	counts := make([]int, len(t.Nodes))
	stampA := make([]int, len(t.Nodes))
	stampB := make([]int, len(t.Nodes))
	for i, c := range cons {
		stamp := i + 1
		for id := t.PointCluster[c.A]; id >= 0; id = t.Nodes[id].Parent {
			stampA[id] = stamp
		}
		for id := t.PointCluster[c.B]; id >= 0; id = t.Nodes[id].Parent {
			stampB[id] = stamp
		}

		for id := t.PointCluster[c.A]; id >= 0; id = t.Nodes[id].Parent {
			shared := stampB[id] == stamp
			switch {
			case c.Type == MustLink && shared:
				counts[id] += 2
			case c.Type == CannotLink && !shared:
				counts[id]++
			}
		}
		if c.Type == CannotLink {
			for id := t.PointCluster[c.B]; id >= 0; id = t.Nodes[id].Parent {
				if stampA[id] != stamp {
					counts[id]++
				}
			}
		}
	}
	return counts
}
