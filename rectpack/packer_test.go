package rectpack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPackerValidation(t *testing.T) {
	_, err := NewPacker(0, 100, BestAreaFit)
	assert.Error(t, err)
	_, err = NewPacker(100, -1, BestAreaFit)
	assert.Error(t, err)
	_, err = NewPacker(100, 100, Heuristic(99))
	assert.Error(t, err)

	p, err := NewPacker(100, 100, BestAreaFit)
	require.NoError(t, err)
	maxSize := p.MaxSize()
	assert.True(t, maxSize.Eq(NewSize(100, 100)))
}

func TestOfflinePack(t *testing.T) {
	p, err := NewPacker(64, 64, BestShortSideFit)
	require.NoError(t, err)

	sizes := []Size{
		NewSizeID(0, 32, 32),
		NewSizeID(1, 16, 16),
		NewSizeID(2, 16, 32),
		NewSizeID(3, 8, 8),
	}
	p.Insert(sizes...)
	assert.Len(t, p.Unpacked(), 4, "offline insert only stages")
	assert.Empty(t, p.Rects())

	require.True(t, p.Pack())
	assert.Empty(t, p.Unpacked())
	require.Len(t, p.Rects(), 4)

	mapping := p.Map()
	for _, size := range sizes {
		rect, ok := mapping[size.ID]
		require.True(t, ok, "size %d missing from result", size.ID)
		if rect.Flipped {
			assert.True(t, rect.Size.Eq(NewSize(size.Height, size.Width)))
		} else {
			assert.True(t, rect.Size.Eq(size))
		}
	}

	rects := p.Rects()
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, rects[i].Intersects(rects[j]),
				"%s intersects %s", rects[i].String(), rects[j].String())
		}
	}
}

func TestOnlinePack(t *testing.T) {
	p, err := NewPacker(32, 32, BestAreaFit)
	require.NoError(t, err)
	p.Online = true

	assert.True(t, p.InsertSize(0, 32, 32))
	assert.Len(t, p.Rects(), 1)
	assert.False(t, p.InsertSize(1, 1, 1), "full bin must refuse")
	assert.Len(t, p.Rects(), 1)
}

func TestPackLeavesFailuresUnpacked(t *testing.T) {
	p, err := NewPacker(10, 10, BestAreaFit)
	require.NoError(t, err)

	p.Insert(NewSizeID(0, 10, 10), NewSizeID(1, 10, 10))
	assert.False(t, p.Pack())
	assert.Len(t, p.Rects(), 1)
	require.Len(t, p.Unpacked(), 1)
	assert.True(t, p.Unpacked()[0].Eq(NewSize(10, 10)))

	// Packing again changes nothing until space is available.
	assert.False(t, p.Pack())
	assert.Len(t, p.Rects(), 1)
	assert.Len(t, p.Unpacked(), 1)
}

func TestPaddingSeparatesRects(t *testing.T) {
	const padding = 2
	p, err := NewPacker(100, 100, BestShortSideFit)
	require.NoError(t, err)
	p.SetPadding(padding)

	for i := 0; i < 9; i++ {
		p.Insert(NewSizeID(i, 10, 10))
	}
	require.True(t, p.Pack())
	rects := p.Rects()
	require.Len(t, rects, 9)

	for _, r := range rects {
		assert.True(t, r.Size.Eq(NewSize(10, 10)), "padding leaked into %s", r.String())
	}
	// With the trailing gap restored, rectangles still must not collide.
	for i := 0; i < len(rects); i++ {
		a := rects[i]
		a.Width += padding
		a.Height += padding
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, a.Intersects(rects[j]),
				"%s and %s closer than padding", rects[i].String(), rects[j].String())
		}
	}
}

func TestSizeAndShrink(t *testing.T) {
	p, err := NewPacker(100, 100, BestShortSideFit)
	require.NoError(t, err)

	p.Insert(NewSizeID(0, 10, 10), NewSizeID(1, 10, 10))
	require.True(t, p.Pack())
	size := p.Size()
	assert.True(t, size.Eq(NewSize(10, 20)), "got %s", size.String())

	require.True(t, p.Shrink())
	maxSize := p.MaxSize()
	assert.True(t, maxSize.Eq(NewSize(10, 20)))
	assert.Len(t, p.Rects(), 2)
	assert.Equal(t, 1.0, p.Occupancy(false))

	// Already tight, nothing further to reclaim.
	assert.False(t, p.Shrink())
}

func TestRepack(t *testing.T) {
	p, err := NewPacker(64, 64, BestAreaFit)
	require.NoError(t, err)

	// Pack in two passes, then repack everything in one.
	p.Insert(NewSizeID(0, 20, 20), NewSizeID(1, 10, 30))
	require.True(t, p.Pack())
	p.Insert(NewSizeID(2, 30, 10))
	require.True(t, p.Pack())
	require.Len(t, p.Rects(), 3)

	require.True(t, p.Repack())
	assert.Len(t, p.Rects(), 3)
	assert.Empty(t, p.Unpacked())
}

func TestClear(t *testing.T) {
	p, err := NewPacker(64, 64, BestAreaFit)
	require.NoError(t, err)
	p.Insert(NewSizeID(0, 8, 8))
	require.True(t, p.Pack())

	p.Clear()
	assert.Empty(t, p.Rects())
	assert.Empty(t, p.Unpacked())
	assert.Equal(t, 0.0, p.Occupancy(false))
	maxSize := p.MaxSize()
	assert.True(t, maxSize.Eq(NewSize(64, 64)), "Clear must retain configuration")
}

func TestRandomNoOverlap(t *testing.T) {
	const (
		count      = 256
		atlasWidth = 512
	)
	rng := rand.New(rand.NewSource(1))

	p, err := NewPacker(atlasWidth, atlasWidth, BestShortSideFit)
	require.NoError(t, err)
	p.AllowRotate(true)
	p.SetPadding(2)
	p.Sorter(SortArea, false)

	for i := 0; i < count; i++ {
		p.Insert(NewSizeID(i, rng.Intn(48)+8, rng.Intn(48)+8))
	}
	p.Pack()
	rects := p.Rects()
	assert.NotEmpty(t, rects)
	assert.Equal(t, count, len(rects)+len(p.Unpacked()))

	for i := 0; i < len(rects); i++ {
		assert.GreaterOrEqual(t, rects[i].X, 0)
		assert.GreaterOrEqual(t, rects[i].Y, 0)
		assert.LessOrEqual(t, rects[i].Right(), atlasWidth)
		assert.LessOrEqual(t, rects[i].Bottom(), atlasWidth)
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, rects[i].Intersects(rects[j]),
				"%s intersects %s", rects[i].String(), rects[j].String())
		}
	}
}

func TestSorters(t *testing.T) {
	a := NewSize(10, 2)
	b := NewSize(4, 4)

	assert.Negative(t, SortArea(a, b), "larger area sorts first")
	assert.Negative(t, SortPerimeter(a, b))
	assert.Negative(t, SortDiff(a, b))
	assert.Positive(t, SortMinSide(a, b))
	assert.Negative(t, SortMaxSide(a, b))
	assert.Negative(t, SortRatio(a, b))
}
