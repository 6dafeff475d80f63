package rectpack

import "cmp"

// SortFunc is the prototype for functions comparing two sizes, returning
// -1, 0, or 1 as a is less than, equal to, or greater than b.
type SortFunc func(a, b Size) int

// SortArea sorts by area, largest first.
func SortArea(a, b Size) int {
	return cmp.Compare(b.Area(), a.Area())
}

// SortPerimeter sorts by perimeter, largest first.
func SortPerimeter(a, b Size) int {
	return cmp.Compare(b.Perimeter(), a.Perimeter())
}

// SortDiff sorts by the difference between width and height, largest first.
func SortDiff(a, b Size) int {
	return cmp.Compare(abs(b.Width-b.Height), abs(a.Width-a.Height))
}

// SortMinSide sorts by the shorter side, largest first.
func SortMinSide(a, b Size) int {
	return cmp.Compare(b.MinSide(), a.MinSide())
}

// SortMaxSide sorts by the longer side, largest first.
func SortMaxSide(a, b Size) int {
	return cmp.Compare(b.MaxSide(), a.MaxSide())
}

// SortRatio sorts by the ratio between width and height, largest first.
func SortRatio(a, b Size) int {
	return cmp.Compare(b.Ratio(), a.Ratio())
}
