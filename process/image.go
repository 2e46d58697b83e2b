package process

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	// Decoders for the formats the convert-set can name.
	_ "image/gif"
	_ "image/png"

	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
)

const jpegQuality = 90

// convertToJPEG converts one stored image to JPEG, atomically: the converted
// file is written under a temp name and renamed into place, then the
// original is removed. The original survives any failure.
func (c *Converter) convertToJPEG(name string) (string, error) {
	src, err := os.Open(filepath.Join(c.root, name))
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	img, _, err := image.Decode(src)
	if closeErr := src.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// JPEG has no alpha channel. Flatten onto white so transparent regions
	// do not come out black.
	flattened := flatten(img)

	target, err := c.namer.Reserve(jpegName(name))
	if err != nil {
		return "", fmt.Errorf("reserve target name: %w", err)
	}

	finalPath := filepath.Join(c.root, target)
	tmpPath := finalPath + storage.PartSuffix

	dst, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		c.namer.Release(target)
		return "", fmt.Errorf("create target: %w", err)
	}
	if err := jpeg.Encode(dst, flattened, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmpPath)
		c.namer.Release(target)
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmpPath)
		c.namer.Release(target)
		return "", fmt.Errorf("sync target: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tmpPath)
		c.namer.Release(target)
		return "", fmt.Errorf("close target: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		c.namer.Release(target)
		return "", fmt.Errorf("rename target: %w", err)
	}
	c.namer.Commit(target)

	// The converted file replaces the raw one unless they share a name.
	if !strings.EqualFold(target, name) {
		if err := os.Remove(filepath.Join(c.root, name)); err != nil {
			tool.DefaultLogger.Errorf("[Convert] Failed to remove original %s: %v", name, err)
		}
	}
	return target, nil
}

// flatten draws img onto an opaque white background.
func flatten(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

func isOpaque(img image.Image) bool {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	return false
}
