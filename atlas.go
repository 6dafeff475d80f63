package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"github.com/sirupsen/logrus"

	"binpack2d/rectpack"
)

// SpriteInfo describes where a source image ended up within an atlas. When
// the sprite was trimmed, Region holds only its opaque part and SourceRect
// locates that part within the original canvas.
type SpriteInfo struct {
	Filename string `json:"filename"`
	Region   struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"region"`
	SourceSize struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"sourceSize"`
	SourceRect struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	} `json:"sourceRect,omitempty"`
	Trimmed bool `json:"trimmed"`
	Rotated bool `json:"rotated"`
}

// AtlasEntry is the metadata for a single atlas image.
type AtlasEntry struct {
	Atlas string `json:"atlas"`
	Size  struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"size"`
	Sprites map[string]SpriteInfo `json:"sprites"`
}

// AtlasFile is the sheet description written alongside the atlas images.
type AtlasFile struct {
	Meta struct {
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	} `json:"meta"`
	Atlases []AtlasEntry `json:"atlases"`
}

// runPack is the pack command: scan, pack, composite, describe.
func runPack(opts *Options) error {
	start := time.Now()

	paths, err := listImages(opts.InputDir, opts.SortFiles)
	if err != nil {
		return err
	}
	logrus.Infof("found %d images in %s", len(paths), opts.InputDir)

	sizes, sourceRects, err := scanImages(paths, opts)
	if err != nil {
		return err
	}
	packers, err := packAll(sizes, opts)
	if err != nil {
		return err
	}
	if err := writeAtlases(packers, paths, sourceRects, opts); err != nil {
		return err
	}
	logrus.Infof("packed %d images into %d atlas(es) in %s",
		len(paths), len(packers), time.Since(start).Round(time.Millisecond))
	return nil
}

// listImages returns the PNG files of a directory, in natural name order
// when sorted is set.
func listImages(dir string, sorted bool) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("input directory %s: %w", dir, err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PNG images found in %s", dir)
	}
	if sorted {
		sort.Sort(natural.StringSlice(paths))
	}
	return paths, nil
}

// scanImages decodes every image concurrently and returns the sizes to pack
// along with the region of each source that will be copied into the atlas.
// With trimming enabled the size is the bounding box of the non-transparent
// pixels; otherwise only the image header is decoded.
func scanImages(paths []string, opts *Options) ([]rectpack.Size, []image.Rectangle, error) {
	sizes := make([]rectpack.Size, len(paths))
	sourceRects := make([]image.Rectangle, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			file, err := os.Open(path)
			if err != nil {
				errs[i] = fmt.Errorf("open %s: %w", path, err)
				return
			}
			defer file.Close()

			if opts.Trim {
				src, err := imaging.Decode(file)
				if err != nil {
					errs[i] = fmt.Errorf("decode %s: %w", path, err)
					return
				}
				trim := imageBBox(src, uint8(opts.AlphaThreshold))
				sourceRects[i] = trim
				sizes[i] = rectpack.NewSizeID(i, trim.Dx(), trim.Dy())
			} else {
				cfg, _, err := image.DecodeConfig(file)
				if err != nil {
					errs[i] = fmt.Errorf("decode %s: %w", path, err)
					return
				}
				sourceRects[i] = image.Rect(0, 0, cfg.Width, cfg.Height)
				sizes[i] = rectpack.NewSizeID(i, cfg.Width, cfg.Height)
			}
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return sizes, sourceRects, nil
}

// imageBBox returns the bounding box of the pixels whose alpha exceeds the
// threshold, or the full bounds when the image is entirely transparent.
func imageBBox(img image.Image, threshold uint8) image.Rectangle {
	bounds := img.Bounds()
	if bounds.Empty() {
		return image.Rectangle{}
	}
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y
	found := false

	grow := func(x, y int) {
		found = true
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}

	switch src := img.(type) {
	case *image.RGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := src.PixOffset(bounds.Min.X, y)
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if src.Pix[i+3] > threshold {
					grow(x, y)
				}
				i += 4
			}
		}
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := src.PixOffset(bounds.Min.X, y)
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if src.Pix[i+3] > threshold {
					grow(x, y)
				}
				i += 4
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if uint8(a>>8) > threshold {
					grow(x, y)
				}
			}
		}
	}
	if !found {
		return bounds
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// packAll packs the sizes into as many atlases as needed. Pieces that do not
// fit one atlas overflow into the next.
func packAll(sizes []rectpack.Size, opts *Options) ([]*rectpack.Packer, error) {
	heuristic, err := rectpack.ParseHeuristic(opts.Heuristic)
	if err != nil {
		return nil, err
	}

	var packers []*rectpack.Packer
	pending := sizes
	for len(pending) > 0 {
		packer, err := rectpack.NewPacker(opts.MaxWidth, opts.MaxHeight, heuristic)
		if err != nil {
			return nil, err
		}
		packer.AllowRotate(opts.AllowRotate)
		packer.SetPadding(opts.Padding)
		packer.Insert(pending...)

		full := packer.Pack()
		if len(packer.Rects()) == 0 {
			return nil, fmt.Errorf("no image fits within the maximum atlas size %dx%d",
				opts.MaxWidth, opts.MaxHeight)
		}
		if opts.AutoSize {
			packer.Shrink()
		}
		packers = append(packers, packer)
		if full {
			break
		}
		pending = append([]rectpack.Size(nil), packer.Unpacked()...)
		logrus.Warnf("%d image(s) did not fit, starting atlas #%d", len(pending), len(packers))
	}
	return packers, nil
}

// createAtlasImage composites the packed sprites of one packer into an
// image and collects their sheet metadata.
func createAtlasImage(packer *rectpack.Packer, paths []string, sourceRects []image.Rectangle, opts *Options) (*image.NRGBA, map[string]SpriteInfo, error) {
	atlasSize := packer.Size()
	if opts.PowerOfTwo {
		atlasSize.Width = nextPowerOfTwo(atlasSize.Width)
		atlasSize.Height = nextPowerOfTwo(atlasSize.Height)
	}
	dst := imaging.New(atlasSize.Width, atlasSize.Height, color.NRGBA{})
	sprites := make(map[string]SpriteInfo, len(packer.Rects()))

	rects := packer.Rects()
	errs := make([]error, len(rects))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for idx, rect := range rects {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, r rectpack.Rect) {
			defer wg.Done()
			defer func() { <-sem }()

			path := paths[r.ID]
			src, err := imaging.Open(path)
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", path, err)
				return
			}

			srcRect := sourceRects[r.ID]
			if r.Flipped {
				// Rotate the source clockwise and carry the trim region
				// into the rotated coordinate space.
				origHeight := src.Bounds().Dy()
				src = imaging.Rotate270(src)
				minX := origHeight - srcRect.Min.Y - srcRect.Dy()
				minY := srcRect.Min.X
				srcRect = image.Rect(minX, minY, minX+srcRect.Dy(), minY+srcRect.Dx())
			}
			bounds := src.Bounds()

			info := SpriteInfo{Filename: filepath.Base(path)}
			info.Region.X = r.X
			info.Region.Y = r.Y
			info.Region.W = r.Width
			info.Region.H = r.Height
			info.Rotated = r.Flipped
			info.SourceSize.W = bounds.Dx()
			info.SourceSize.H = bounds.Dy()

			trimmed := srcRect.Min.X > 0 || srcRect.Min.Y > 0 ||
				srcRect.Dx() < bounds.Dx() || srcRect.Dy() < bounds.Dy()
			if trimmed {
				info.Trimmed = true
				info.SourceRect.X = srcRect.Min.X
				info.SourceRect.Y = srcRect.Min.Y
				info.SourceRect.W = srcRect.Dx()
				info.SourceRect.H = srcRect.Dy()
			}

			dstRect := image.Rect(r.X, r.Y, r.Right(), r.Bottom())
			mu.Lock()
			draw.Draw(dst, dstRect, src, srcRect.Min, draw.Src)
			sprites[info.Filename] = info
			mu.Unlock()
		}(idx, rect)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return dst, sprites, nil
}

// writeAtlases saves the atlas images and the sheet JSON describing them.
func writeAtlases(packers []*rectpack.Packer, paths []string, sourceRects []image.Rectangle, opts *Options) error {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return err
	}

	var sheet AtlasFile
	sheet.Meta.Version = version
	sheet.Meta.Timestamp = time.Now().Format("2006-01-02 15:04:05")

	for i, packer := range packers {
		img, sprites, err := createAtlasImage(packer, paths, sourceRects, opts)
		if err != nil {
			return err
		}
		name := "atlas.png"
		if len(packers) > 1 {
			name = fmt.Sprintf("atlas_%d.png", i)
		}
		outPath := filepath.Join(opts.OutputDir, name)
		if err := imaging.Save(img, outPath); err != nil {
			return fmt.Errorf("save %s: %w", outPath, err)
		}

		entry := AtlasEntry{Atlas: name, Sprites: sprites}
		entry.Size.W = img.Bounds().Dx()
		entry.Size.H = img.Bounds().Dy()
		sheet.Atlases = append(sheet.Atlases, entry)
		logrus.Infof("wrote %s (%dx%d, %.1f%% used)",
			outPath, entry.Size.W, entry.Size.H, packer.Occupancy(true)*100)
	}

	data, err := json.MarshalIndent(&sheet, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(opts.OutputDir, "atlases.json"), data, 0644)
}

// nextPowerOfTwo rounds up to the next power of two.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
