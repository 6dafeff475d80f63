package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// runUnpack is the unpack command: it reads a sheet JSON, cuts every sprite
// back out of its atlas and writes them as individual PNG files.
func runUnpack(sheetPath, outputDir string) error {
	data, err := os.ReadFile(sheetPath)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	var sheet AtlasFile
	if err := json.Unmarshal(data, &sheet); err != nil {
		return fmt.Errorf("parse sheet: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	// Atlas images live next to the sheet that describes them.
	atlasDir := filepath.Dir(sheetPath)
	count := 0
	for _, entry := range sheet.Atlases {
		atlasImg, err := imaging.Open(filepath.Join(atlasDir, entry.Atlas))
		if err != nil {
			return fmt.Errorf("open atlas %s: %w", entry.Atlas, err)
		}
		for name, sprite := range entry.Sprites {
			outPath := filepath.Join(outputDir, name)
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return err
			}
			if err := imaging.Save(restoreSprite(atlasImg, &sprite), outPath); err != nil {
				return fmt.Errorf("save %s: %w", outPath, err)
			}
			count++
		}
	}
	logrus.Infof("unpacked %d sprites to %s", count, outputDir)
	return nil
}

// restoreSprite cuts a sprite out of its atlas, re-embeds trimmed sprites
// into a canvas of their original size, and undoes packing rotation.
func restoreSprite(atlas image.Image, sprite *SpriteInfo) *image.NRGBA {
	region := image.Rect(sprite.Region.X, sprite.Region.Y,
		sprite.Region.X+sprite.Region.W, sprite.Region.Y+sprite.Region.H)
	img := imaging.Crop(atlas, region)

	if sprite.Trimmed {
		canvas := imaging.New(sprite.SourceSize.W, sprite.SourceSize.H, color.NRGBA{})
		img = imaging.Paste(canvas, img, image.Pt(sprite.SourceRect.X, sprite.SourceRect.Y))
	}
	if sprite.Rotated {
		img = imaging.Rotate90(img)
	}
	return img
}
