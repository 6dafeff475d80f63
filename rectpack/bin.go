package rectpack

import (
	"math"
	"slices"
)

// A Bin packs rectangles into a single fixed-size container using the
// MaxRects family of placement heuristics. It maintains two collections: the
// rectangles already placed, and the maximal empty sub-rectangles of the
// remaining space. Free rectangles may overlap one another; they are not a
// partition of the empty space.
//
// A Bin must not be mutated from multiple goroutines concurrently. Callers
// needing parallelism should use one Bin per goroutine.
type Bin struct {
	width     int
	height    int
	allowFlip bool
	usedArea  int
	usedRects []Rect
	freeRects []Rect
}

// NewBin creates a bin with the given dimensions. When allowFlip is set,
// rectangles may be rotated 90 degrees to improve placement.
func NewBin(width, height int, allowFlip bool) *Bin {
	var b Bin
	b.Init(width, height, allowFlip)
	return &b
}

// Init resets the bin to empty with the given dimensions and rotation
// policy. The free list becomes a single rectangle covering the whole bin.
func (b *Bin) Init(width, height int, allowFlip bool) {
	b.width = width
	b.height = height
	b.allowFlip = allowFlip
	b.usedArea = 0
	b.usedRects = b.usedRects[:0]
	b.freeRects = append(b.freeRects[:0], NewRect(0, 0, width, height))
}

// Width returns the width of the bin.
func (b *Bin) Width() int {
	return b.width
}

// Height returns the height of the bin.
func (b *Bin) Height() int {
	return b.height
}

// AllowFlip reports whether rectangles may be rotated during placement.
func (b *Bin) AllowFlip() bool {
	return b.allowFlip
}

// Used returns the placed rectangles. The slice is managed internally and
// must be copied before modification.
func (b *Bin) Used() []Rect {
	return b.usedRects
}

// Free returns the maximal free rectangles of the remaining space. The slice
// is managed internally and must be copied before modification.
func (b *Bin) Free() []Rect {
	return b.freeRects
}

// UsedArea returns the total area covered by placed rectangles.
func (b *Bin) UsedArea() int {
	return b.usedArea
}

// Occupancy returns the fraction of the bin area covered by placed
// rectangles, between 0.0 (empty) and 1.0 (perfect utilization).
func (b *Bin) Occupancy() float64 {
	return float64(b.usedArea) / float64(b.width*b.height)
}

// Insert places a single rectangle of the given size using the given
// heuristic. The returned rectangle has a height of 0 when no placement was
// possible, in which case the bin is left unchanged.
func (b *Bin) Insert(width, height int, heuristic Heuristic) Rect {
	newNode, _, _ := b.findNode(width, height, heuristic)
	if newNode.Height == 0 {
		return newNode
	}
	b.placeRect(newNode)
	return newNode
}

// InsertSizes places a batch of sizes, repeatedly choosing the pending size
// whose best placement scores lowest under the given heuristic. Packing
// stops when none of the remaining sizes fit; those are omitted from the
// result. The input slice is consumed by the call, and the result is in
// placement order, not input order.
func (b *Bin) InsertSizes(sizes []Size, heuristic Heuristic) []Rect {
	placed, _ := b.insertBest(sizes, heuristic)
	return placed
}

// insertBest is the batch driver shared by InsertSizes and the Packer. It
// returns the placements and whatever sizes could not be placed.
func (b *Bin) insertBest(sizes []Size, heuristic Heuristic) ([]Rect, []Size) {
	placed := make([]Rect, 0, len(sizes))
	for len(sizes) > 0 {
		var bestNode Rect
		bestScore1 := math.MaxInt
		bestScore2 := math.MaxInt
		bestIndex := -1

		for i, size := range sizes {
			newNode, score1, score2 := b.scoreRect(size.Width, size.Height, heuristic)
			if score1 < bestScore1 || (score1 == bestScore1 && score2 < bestScore2) {
				bestScore1 = score1
				bestScore2 = score2
				bestNode = newNode
				bestNode.ID = size.ID
				bestIndex = i
			}
		}

		if bestIndex == -1 {
			break
		}
		b.placeRect(bestNode)
		placed = append(placed, bestNode)

		last := len(sizes) - 1
		sizes[bestIndex] = sizes[last]
		sizes = sizes[:last]
	}
	return placed, sizes
}

// scoreRect scores a size under the given heuristic with "lower is better"
// semantics for all heuristics, negating the contact point score so that a
// single comparison applies uniformly. An unplaceable size scores MaxInt.
func (b *Bin) scoreRect(width, height int, heuristic Heuristic) (Rect, int, int) {
	newNode, score1, score2 := b.findNode(width, height, heuristic)
	if heuristic == ContactPoint {
		score1 = -score1
	}
	if newNode.Height == 0 {
		score1 = math.MaxInt
		score2 = math.MaxInt
	}
	return newNode, score1, score2
}

// findNode dispatches to the node finder for the given heuristic. A
// non-positive size never fits.
func (b *Bin) findNode(width, height int, heuristic Heuristic) (Rect, int, int) {
	if width < 1 || height < 1 {
		return Rect{}, math.MaxInt, math.MaxInt
	}
	switch heuristic {
	case BestLongSideFit:
		return b.findBestLongSideFit(width, height)
	case BestAreaFit:
		return b.findBestAreaFit(width, height)
	case BottomLeft:
		return b.findBottomLeft(width, height)
	case ContactPoint:
		return b.findContactPoint(width, height)
	default:
		return b.findBestShortSideFit(width, height)
	}
}

// flipFits reports whether the rotated orientation of a size should be tried
// against a free rectangle. Rotation is a fallback: it is only considered
// when enabled, the size is not a square, and the upright orientation did
// not fit the free rectangle.
func (b *Bin) flipFits(free *Rect, width, height int) bool {
	return b.allowFlip && width != height &&
		!(free.Width >= width && free.Height >= height) &&
		free.Width >= height && free.Height >= width
}

func (b *Bin) findBestShortSideFit(width, height int) (Rect, int, int) {
	var bestNode Rect
	bestShortSideFit := math.MaxInt
	bestLongSideFit := math.MaxInt

	for _, free := range b.freeRects {
		if free.Width >= width && free.Height >= height {
			leftoverHoriz := abs(free.Width - width)
			leftoverVert := abs(free.Height - height)
			shortSideFit := min(leftoverHoriz, leftoverVert)
			longSideFit := max(leftoverHoriz, leftoverVert)

			if shortSideFit < bestShortSideFit || (shortSideFit == bestShortSideFit && longSideFit < bestLongSideFit) {
				bestNode = NewRect(free.X, free.Y, width, height)
				bestShortSideFit = shortSideFit
				bestLongSideFit = longSideFit
			}
		} else if b.flipFits(&free, width, height) {
			leftoverHoriz := abs(free.Width - height)
			leftoverVert := abs(free.Height - width)
			shortSideFit := min(leftoverHoriz, leftoverVert)
			longSideFit := max(leftoverHoriz, leftoverVert)

			if shortSideFit < bestShortSideFit || (shortSideFit == bestShortSideFit && longSideFit < bestLongSideFit) {
				bestNode = NewRect(free.X, free.Y, height, width)
				bestNode.Flipped = true
				bestShortSideFit = shortSideFit
				bestLongSideFit = longSideFit
			}
		}
	}
	return bestNode, bestShortSideFit, bestLongSideFit
}

func (b *Bin) findBestLongSideFit(width, height int) (Rect, int, int) {
	var bestNode Rect
	bestShortSideFit := math.MaxInt
	bestLongSideFit := math.MaxInt

	for _, free := range b.freeRects {
		if free.Width >= width && free.Height >= height {
			leftoverHoriz := abs(free.Width - width)
			leftoverVert := abs(free.Height - height)
			shortSideFit := min(leftoverHoriz, leftoverVert)
			longSideFit := max(leftoverHoriz, leftoverVert)

			if longSideFit < bestLongSideFit || (longSideFit == bestLongSideFit && shortSideFit < bestShortSideFit) {
				bestNode = NewRect(free.X, free.Y, width, height)
				bestShortSideFit = shortSideFit
				bestLongSideFit = longSideFit
			}
		} else if b.flipFits(&free, width, height) {
			leftoverHoriz := abs(free.Width - height)
			leftoverVert := abs(free.Height - width)
			shortSideFit := min(leftoverHoriz, leftoverVert)
			longSideFit := max(leftoverHoriz, leftoverVert)

			if longSideFit < bestLongSideFit || (longSideFit == bestLongSideFit && shortSideFit < bestShortSideFit) {
				bestNode = NewRect(free.X, free.Y, height, width)
				bestNode.Flipped = true
				bestShortSideFit = shortSideFit
				bestLongSideFit = longSideFit
			}
		}
	}
	return bestNode, bestLongSideFit, bestShortSideFit
}

func (b *Bin) findBestAreaFit(width, height int) (Rect, int, int) {
	var bestNode Rect
	bestAreaFit := math.MaxInt
	bestShortSideFit := math.MaxInt

	for _, free := range b.freeRects {
		areaFit := free.Width*free.Height - width*height

		if free.Width >= width && free.Height >= height {
			leftoverHoriz := abs(free.Width - width)
			leftoverVert := abs(free.Height - height)
			shortSideFit := min(leftoverHoriz, leftoverVert)

			if areaFit < bestAreaFit || (areaFit == bestAreaFit && shortSideFit < bestShortSideFit) {
				bestNode = NewRect(free.X, free.Y, width, height)
				bestAreaFit = areaFit
				bestShortSideFit = shortSideFit
			}
		} else if b.flipFits(&free, width, height) {
			leftoverHoriz := abs(free.Width - height)
			leftoverVert := abs(free.Height - width)
			shortSideFit := min(leftoverHoriz, leftoverVert)

			if areaFit < bestAreaFit || (areaFit == bestAreaFit && shortSideFit < bestShortSideFit) {
				bestNode = NewRect(free.X, free.Y, height, width)
				bestNode.Flipped = true
				bestAreaFit = areaFit
				bestShortSideFit = shortSideFit
			}
		}
	}
	return bestNode, bestAreaFit, bestShortSideFit
}

func (b *Bin) findBottomLeft(width, height int) (Rect, int, int) {
	var bestNode Rect
	bestY := math.MaxInt
	bestX := math.MaxInt

	for _, free := range b.freeRects {
		if free.Width >= width && free.Height >= height {
			topSideY := free.Y + height
			if topSideY < bestY || (topSideY == bestY && free.X < bestX) {
				bestNode = NewRect(free.X, free.Y, width, height)
				bestY = topSideY
				bestX = free.X
			}
		} else if b.flipFits(&free, width, height) {
			topSideY := free.Y + width
			if topSideY < bestY || (topSideY == bestY && free.X < bestX) {
				bestNode = NewRect(free.X, free.Y, height, width)
				bestNode.Flipped = true
				bestY = topSideY
				bestX = free.X
			}
		}
	}
	return bestNode, bestY, bestX
}

func (b *Bin) findContactPoint(width, height int) (Rect, int, int) {
	var bestNode Rect
	bestContactScore := -1

	for _, free := range b.freeRects {
		if free.Width >= width && free.Height >= height {
			score := b.contactPointScore(free.X, free.Y, width, height)
			if score > bestContactScore {
				bestNode = NewRect(free.X, free.Y, width, height)
				bestContactScore = score
			}
		} else if b.flipFits(&free, width, height) {
			score := b.contactPointScore(free.X, free.Y, height, width)
			if score > bestContactScore {
				bestNode = NewRect(free.X, free.Y, height, width)
				bestNode.Flipped = true
				bestContactScore = score
			}
		}
	}
	return bestNode, bestContactScore, math.MaxInt
}

// contactPointScore sums the length of the edges a placement at the given
// position would share with the bin border and with placed rectangles.
func (b *Bin) contactPointScore(x, y, width, height int) int {
	score := 0

	if x == 0 || x+width == b.width {
		score += height
	}
	if y == 0 || y+height == b.height {
		score += width
	}
	for _, used := range b.usedRects {
		if used.X == x+width || used.X+used.Width == x {
			score += intervalOverlap(used.Y, used.Y+used.Height, y, y+height)
		}
		if used.Y == y+height || used.Y+used.Height == y {
			score += intervalOverlap(used.X, used.X+used.Width, x, x+width)
		}
	}
	return score
}

// placeRect commits a placement: every free rectangle the node intersects is
// replaced by its split residues, the free list is pruned, and the node is
// appended to the used list.
func (b *Bin) placeRect(node Rect) {
	n := len(b.freeRects)
	for i := 0; i < n; {
		if b.splitFreeNode(b.freeRects[i], &node) {
			b.freeRects = slices.Delete(b.freeRects, i, i+1)
			n--
		} else {
			i++
		}
	}
	b.pruneFreeList()
	b.usedArea += node.Area()
	b.usedRects = append(b.usedRects, node)
}

// splitFreeNode tests free against the placed rectangle. If they are
// disjoint it returns false and nothing changes. Otherwise up to four
// residual maximal rectangles (above, below, left, right of the placement)
// are appended to the free list and true is returned, meaning the caller
// removes the original.
func (b *Bin) splitFreeNode(free Rect, used *Rect) bool {
	if used.X >= free.X+free.Width || used.X+used.Width <= free.X ||
		used.Y >= free.Y+free.Height || used.Y+used.Height <= free.Y {
		return false
	}

	if used.X < free.X+free.Width && used.X+used.Width > free.X {
		// New node above the placed rectangle.
		if used.Y > free.Y && used.Y < free.Y+free.Height {
			newNode := free
			newNode.Height = used.Y - newNode.Y
			b.freeRects = append(b.freeRects, newNode)
		}
		// New node below the placed rectangle.
		if used.Y+used.Height < free.Y+free.Height {
			newNode := free
			newNode.Y = used.Y + used.Height
			newNode.Height = free.Y + free.Height - (used.Y + used.Height)
			b.freeRects = append(b.freeRects, newNode)
		}
	}
	if used.Y < free.Y+free.Height && used.Y+used.Height > free.Y {
		// New node to the left of the placed rectangle.
		if used.X > free.X && used.X < free.X+free.Width {
			newNode := free
			newNode.Width = used.X - newNode.X
			b.freeRects = append(b.freeRects, newNode)
		}
		// New node to the right of the placed rectangle.
		if used.X+used.Width < free.X+free.Width {
			newNode := free
			newNode.X = used.X + used.Width
			newNode.Width = free.X + free.Width - (used.X + used.Width)
			b.freeRects = append(b.freeRects, newNode)
		}
	}
	return true
}

// pruneFreeList removes every free rectangle that is fully contained within
// another. Quadratic, but free lists stay small in practice and the
// contained duplicates are an unavoidable byproduct of four-way splitting.
func (b *Bin) pruneFreeList() {
	for i := 0; i < len(b.freeRects); i++ {
		for j := i + 1; j < len(b.freeRects); {
			if b.freeRects[j].ContainsRect(b.freeRects[i]) {
				b.freeRects = slices.Delete(b.freeRects, i, i+1)
				i--
				break
			}
			if b.freeRects[i].ContainsRect(b.freeRects[j]) {
				b.freeRects = slices.Delete(b.freeRects, j, j+1)
			} else {
				j++
			}
		}
	}
}
