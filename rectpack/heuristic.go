package rectpack

import (
	"fmt"
	"strings"
)

// A Heuristic selects the rule used to decide where the next rectangle is
// placed within the remaining free space of a bin.
type Heuristic uint8

const (
	// BestShortSideFit places the rectangle into the free rectangle where the
	// leftover length of the shorter side is minimized.
	BestShortSideFit Heuristic = iota
	// BestLongSideFit places the rectangle into the free rectangle where the
	// leftover length of the longer side is minimized.
	BestLongSideFit
	// BestAreaFit places the rectangle into the smallest free rectangle it
	// fits into.
	BestAreaFit
	// BottomLeft places the rectangle where its top edge ends up lowest,
	// ties broken by the leftmost position.
	BottomLeft
	// ContactPoint places the rectangle where the total length of its edges
	// touching the bin border or other placed rectangles is maximized.
	ContactPoint

	minHeuristic = BestShortSideFit
	maxHeuristic = ContactPoint
)

var heuristicNames = [...]string{
	BestShortSideFit: "BestShortSideFit",
	BestLongSideFit:  "BestLongSideFit",
	BestAreaFit:      "BestAreaFit",
	BottomLeft:       "BottomLeft",
	ContactPoint:     "ContactPoint",
}

// String implements the Stringer interface.
func (h Heuristic) String() string {
	if int(h) < len(heuristicNames) {
		return heuristicNames[h]
	}
	return fmt.Sprintf("Heuristic(%d)", uint8(h))
}

// IsValid reports whether the value is a defined heuristic.
func (h Heuristic) IsValid() bool {
	return h <= maxHeuristic
}

// ParseHeuristic returns the heuristic with the given name. Matching is
// case-insensitive.
func ParseHeuristic(name string) (Heuristic, error) {
	for i, n := range heuristicNames {
		if strings.EqualFold(name, n) {
			return Heuristic(i), nil
		}
	}
	return 0, fmt.Errorf("unknown heuristic: %q", name)
}
