package rectpack

import (
	"fmt"
	"slices"
)

// DefaultSize defines a default maximum width/height for a packer, based on
// the maximum texture size of modern GPUs. When the library is not used to
// build texture atlases, the value has no special meaning beyond being a
// sensible starting point.
const DefaultSize = 4096

// Packer drives a Bin with the workflow conveniences an atlas builder
// needs: staging sizes for offline packing, sort order, padding between
// rectangles, and computing the tight bounds of the result.
type Packer struct {
	// bin holds the shared packing state.
	bin *Bin

	// heuristic selects the placement rule for all insertions.
	heuristic Heuristic

	// packed contains the successfully placed rectangles with padding
	// removed, in placement order.
	packed []Rect

	// unpacked contains sizes that are staged or could not be packed.
	unpacked []Size

	// sortFunc defines the order in which staged sizes are offered to the
	// bin when packing offline.
	//
	// Default: SortArea
	sortFunc SortFunc

	// sortRev reverses the sort order.
	//
	// Default: false
	sortRev bool

	// padding defines the gap reserved around each rectangle. Zero or
	// negative packs rectangles tightly.
	//
	// Default: 0
	padding int

	// Online selects whether sizes are packed immediately upon insertion
	// (online) or merely collected until Pack is called (offline).
	//
	// Online packing is faster since nothing is sorted or compared against
	// other pending sizes, but produces noticeably worse layouts. Unless
	// results are consumed in real-time, offline (the default) is
	// recommended: for building texture atlases the extra time is well
	// spent.
	//
	// Default: false
	Online bool
}

// NewPacker creates a packer for a bin of the given maximum dimensions
// using the given placement heuristic. An error is returned when either
// dimension is less than 1 or the heuristic is not defined.
func NewPacker(maxWidth, maxHeight int, heuristic Heuristic) (*Packer, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("width and height must be greater than 0 (given %vx%v)", maxWidth, maxHeight)
	}
	if !heuristic.IsValid() {
		return nil, fmt.Errorf("invalid heuristic specified: %v", heuristic)
	}
	return &Packer{
		bin:       NewBin(maxWidth, maxHeight, false),
		heuristic: heuristic,
		sortFunc:  SortArea,
	}, nil
}

// NewDefaultPacker creates a packer with the default maximum size
// (DefaultSize square) and the BestShortSideFit heuristic.
func NewDefaultPacker() *Packer {
	packer, _ := NewPacker(DefaultSize, DefaultSize, BestShortSideFit)
	return packer
}

// AllowRotate sets whether rectangles may be rotated 90 degrees to improve
// placement.
//
// Default: false
func (p *Packer) AllowRotate(enabled bool) {
	p.bin.allowFlip = enabled
}

// SetPadding sets the gap reserved around each rectangle.
func (p *Packer) SetPadding(padding int) {
	p.padding = padding
}

// SetHeuristic changes the placement heuristic for subsequent insertions.
func (p *Packer) SetHeuristic(heuristic Heuristic) {
	if heuristic.IsValid() {
		p.heuristic = heuristic
	}
}

// Sorter sets the comparison function and order used to sort staged sizes
// before offline packing.
func (p *Packer) Sorter(compare SortFunc, reverse bool) {
	p.sortFunc = compare
	p.sortRev = reverse
}

// Insert adds sizes to the packer. In online mode they are packed
// immediately and the sizes that failed to pack are returned; in offline
// mode they are staged and the staged list is returned.
func (p *Packer) Insert(sizes ...Size) []Size {
	if p.Online {
		return p.insertNow(sizes)
	}
	p.unpacked = append(p.unpacked, sizes...)
	return p.unpacked
}

// InsertSize adds a single size with the given identifier, reporting
// whether it was accepted. Offline staging always succeeds; online packing
// fails when the size does not fit.
func (p *Packer) InsertSize(id, width, height int) bool {
	result := p.Insert(NewSizeID(id, width, height))
	if p.Online && len(result) != 0 {
		return false
	}
	return true
}

// Rects returns the successfully packed rectangles. The slice is managed
// internally and must be copied before modification.
func (p *Packer) Rects() []Rect {
	return p.packed
}

// Unpacked returns the sizes that are staged or failed to pack. The slice
// is managed internally and must be copied before modification.
func (p *Packer) Unpacked() []Size {
	return p.unpacked
}

// Map returns a mapping of rectangle IDs to packed rectangles.
func (p *Packer) Map() map[int]Rect {
	mapping := make(map[int]Rect, len(p.packed))
	for _, rect := range p.packed {
		mapping[rect.ID] = rect
	}
	return mapping
}

// MaxSize returns the maximum dimensions the packer can fill.
func (p *Packer) MaxSize() Size {
	return NewSize(p.bin.width, p.bin.height)
}

// Size computes the tight bounds of the current packing: the minimum size
// required to contain every packed rectangle, including padding.
func (p *Packer) Size() Size {
	var size Size
	for _, rect := range p.packed {
		size.Width = max(size.Width, rect.Right()+p.padding)
		size.Height = max(size.Height, rect.Bottom()+p.padding)
	}
	return size
}

// Occupancy returns the space utilization between 0.0 and 1.0. When current
// is set it is measured against the tight bounds of the packing, otherwise
// against the maximum bin size.
func (p *Packer) Occupancy(current bool) float64 {
	if current {
		size := p.Size()
		if size.Area() == 0 {
			return 0
		}
		return float64(p.bin.UsedArea()) / float64(size.Area())
	}
	return p.bin.Occupancy()
}

// Pack packs all staged sizes, sorted by the configured order, and reports
// whether everything fit. Sizes that did not fit remain available through
// Unpacked.
func (p *Packer) Pack() bool {
	if len(p.unpacked) == 0 {
		return true
	}
	if p.sortFunc != nil {
		if p.sortRev {
			slices.SortFunc(p.unpacked, func(a, b Size) int {
				return p.sortFunc(b, a)
			})
		} else {
			slices.SortFunc(p.unpacked, p.sortFunc)
		}
	} else if p.sortRev {
		slices.Reverse(p.unpacked)
	}
	failed := p.insertNow(p.unpacked)
	p.unpacked = append(p.unpacked[:0], failed...)
	return len(failed) == 0
}

// Clear resets the packer state, discarding all packed and staged
// rectangles while retaining the configuration.
func (p *Packer) Clear() {
	p.bin.Init(p.bin.width, p.bin.height, p.bin.allowFlip)
	p.packed = p.packed[:0]
	p.unpacked = p.unpacked[:0]
}

// Repack packs all previously packed rectangles again from scratch, which
// can improve utilization after several incremental packs or configuration
// changes. Reports whether everything fit.
func (p *Packer) Repack() bool {
	sizes := p.packedSizes()
	p.Clear()
	p.unpacked = append(p.unpacked, sizes...)
	return p.Pack()
}

// Shrink reduces the bin to the tight bounds of the current packing and
// repacks, reclaiming the slack of a generous maximum size. When the
// tightened repack fails the previous layout is restored. Reports whether
// the bin was shrunk.
func (p *Packer) Shrink() bool {
	size := p.Size()
	if size.Area() == 0 || (size.Width >= p.bin.width && size.Height >= p.bin.height) {
		return false
	}
	prevWidth, prevHeight := p.bin.width, p.bin.height
	sizes := p.packedSizes()

	p.bin.Init(size.Width, size.Height, p.bin.allowFlip)
	p.packed = p.packed[:0]
	if failed := p.insertNow(sizes); len(failed) > 0 {
		// Tight bounds were not achievable with this heuristic; put the
		// previous layout back.
		p.bin.Init(prevWidth, prevHeight, p.bin.allowFlip)
		p.packed = p.packed[:0]
		p.insertNow(sizes)
		return false
	}
	return true
}

// packedSizes rebuilds the request sizes of the packed rectangles,
// restoring the original orientation of flipped placements.
func (p *Packer) packedSizes() []Size {
	sizes := make([]Size, 0, len(p.packed))
	for _, rect := range p.packed {
		size := rect.Size
		if rect.Flipped {
			size.Width, size.Height = size.Height, size.Width
		}
		sizes = append(sizes, size)
	}
	return sizes
}

// insertNow packs the given sizes into the bin immediately, returning the
// sizes that did not fit.
func (p *Packer) insertNow(sizes []Size) []Size {
	pending := make([]Size, len(sizes))
	copy(pending, sizes)
	for i := range pending {
		padSize(&pending[i], p.padding)
	}

	placed, rest := p.bin.insertBest(pending, p.heuristic)
	for _, rect := range placed {
		unpadRect(&rect, p.padding)
		p.packed = append(p.packed, rect)
	}
	if len(rest) == 0 {
		return nil
	}
	failed := make([]Size, len(rest))
	copy(failed, rest)
	if p.padding > 0 {
		for i := range failed {
			failed[i].Width -= p.padding
			failed[i].Height -= p.padding
		}
	}
	return failed
}
