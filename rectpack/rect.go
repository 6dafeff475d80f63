package rectpack

import "fmt"

// Point describes a location in 2D space.
type Point struct {
	// X is the location on the horizontal x-axis.
	X int `json:"x"`
	// Y is the location on the vertical y-axis.
	Y int `json:"y"`
}

// NewPoint initializes a new point with the given coordinates.
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Eq tests whether the receiver and another point have the same value.
func (p *Point) Eq(point Point) bool {
	return p.X == point.X && p.Y == point.Y
}

// String returns a string representation of the point.
func (p *Point) String() string {
	return fmt.Sprintf("[%v, %v]", p.X, p.Y)
}

// Size describes the dimensions of an entity in 2D space.
type Size struct {
	// Width is the dimension on the horizontal x-axis.
	Width int `json:"width"`
	// Height is the dimension on the vertical y-axis.
	Height int `json:"height"`
	// ID is a user-defined identifier to differentiate this instance from
	// others. It is retained through packing so results can be correlated
	// with their inputs.
	ID int `json:"-"`
}

// NewSize creates a new size with the given dimensions.
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// NewSizeID creates a new size with the given dimensions and identifier.
func NewSizeID(id, width, height int) Size {
	return Size{ID: id, Width: width, Height: height}
}

// Eq tests whether the receiver and another size have the same dimensions.
// The ID field is ignored.
func (sz *Size) Eq(size Size) bool {
	return sz.Width == size.Width && sz.Height == size.Height
}

// String returns a string representation of the size.
func (sz *Size) String() string {
	return fmt.Sprintf("[%v, %v]", sz.Width, sz.Height)
}

// Area returns the total area (width * height).
func (sz *Size) Area() int {
	return sz.Width * sz.Height
}

// Perimeter returns the total length of all sides.
func (sz *Size) Perimeter() int {
	return (sz.Width + sz.Height) << 1
}

// MaxSide returns the value of the greater side.
func (sz *Size) MaxSide() int {
	return max(sz.Width, sz.Height)
}

// MinSide returns the value of the lesser side.
func (sz *Size) MinSide() int {
	return min(sz.Width, sz.Height)
}

// Ratio returns the ratio between the width and height.
func (sz *Size) Ratio() float64 {
	return float64(sz.Width) / float64(sz.Height)
}

// Rect describes a location (top-left corner) and size in 2D space.
type Rect struct {
	// Point is the coordinate of the top-left corner.
	Point
	// Size is the width and height.
	Size
	// Flipped indicates whether the rectangle was rotated 90 degrees during
	// packing, in which case Width and Height are swapped relative to the
	// size that was requested.
	Flipped bool `json:"flipped,omitempty"`
}

// NewRect initializes a new rectangle with the given position and size.
func NewRect(x, y, w, h int) Rect {
	return Rect{
		Point: Point{X: x, Y: y},
		Size:  Size{Width: w, Height: h},
	}
}

// Eq compares two rectangles for equal position and size.
func (r *Rect) Eq(rect Rect) bool {
	return r.Point.Eq(rect.Point) && r.Size.Eq(rect.Size)
}

// String returns a string describing the rectangle.
func (r *Rect) String() string {
	return fmt.Sprintf("[%v, %v, %v, %v]", r.X, r.Y, r.Width, r.Height)
}

// Left returns the coordinate of the left edge on the x-axis.
func (r *Rect) Left() int {
	return r.X
}

// Top returns the coordinate of the top edge on the y-axis.
func (r *Rect) Top() int {
	return r.Y
}

// Right returns the coordinate of the right edge on the x-axis.
func (r *Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the coordinate of the bottom edge on the y-axis.
func (r *Rect) Bottom() int {
	return r.Y + r.Height
}

// IsEmpty tests whether the width or height is less than 1.
func (r *Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains tests whether the given coordinate is within the bounds of the
// receiver.
func (r *Rect) Contains(x, y int) bool {
	return r.X <= x && x < r.X+r.Width && r.Y <= y && y < r.Y+r.Height
}

// ContainsRect tests whether the given rectangle is contained within the
// bounds of the receiver.
func (r *Rect) ContainsRect(rect Rect) bool {
	return r.X <= rect.X &&
		rect.X+rect.Width <= r.X+r.Width &&
		r.Y <= rect.Y &&
		rect.Y+rect.Height <= r.Y+r.Height
}

// Intersects tests whether the receiver has any overlap with the given
// rectangle.
func (r *Rect) Intersects(rect Rect) bool {
	return rect.X < r.X+r.Width &&
		r.X < rect.X+rect.Width &&
		rect.Y < r.Y+r.Height &&
		r.Y < rect.Y+rect.Height
}

// intervalOverlap returns 0 if the two 1D intervals are disjoint, or the
// length of their overlap otherwise.
func intervalOverlap(aStart, aEnd, bStart, bEnd int) int {
	if aEnd < bStart || bEnd < aStart {
		return 0
	}
	return min(aEnd, bEnd) - max(aStart, bStart)
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x >= 0 {
		return x
	}
	return -x
}

// padSize grows a size by the given padding.
func padSize(size *Size, padding int) {
	if padding <= 0 {
		return
	}
	size.Width += padding
	size.Height += padding
}

// unpadRect removes the trailing gap padSize reserved, restoring the
// requested dimensions of a packed rectangle.
func unpadRect(rect *Rect, padding int) {
	if padding <= 0 {
		return
	}
	rect.Width -= padding
	rect.Height -= padding
}
