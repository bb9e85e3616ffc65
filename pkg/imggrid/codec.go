package imggrid

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gorgonia.org/tensor"
)

// ToImage converts a [c, h, w] or [h, w] float32 tensor into a standard
// image. Single-channel input becomes grayscale, 3-channel input RGB.
// Values are remapped from drange to 0-255, rounded to nearest integer
// and clamped to the valid byte range.
func ToImage(img *tensor.Dense, drange Range) (image.Image, error) {
	shape := img.Shape()
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("expected 2-d or 3-d image, got shape %v", shape)
	}
	channels := 1
	h := shape[0]
	w := shape[1]
	if len(shape) == 3 {
		channels = shape[0]
		h = shape[1]
		w = shape[2]
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("expected 1 or 3 channels, got %d", channels)
	}

	remapped, err := AdjustDynamicRange(img, drange, RangeByte)
	if err != nil {
		return nil, err
	}
	data := remapped.Data().([]float32)

	if channels == 1 {
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = quantize(data[y*w+x])
			}
		}
		return out, nil
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*out.Stride + x*4
			out.Pix[off+0] = quantize(data[0*plane+y*w+x])
			out.Pix[off+1] = quantize(data[1*plane+y*w+x])
			out.Pix[off+2] = quantize(data[2*plane+y*w+x])
			out.Pix[off+3] = 0xff
		}
	}
	return out, nil
}

func quantize(v float32) uint8 {
	r := math.Round(float64(v))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// Save encodes a single image tensor to filename. The raster format is
// inferred from the filename extension (.png, .jpg, .jpeg).
func Save(img *tensor.Dense, filename string, drange Range) error {
	encoded, err := ToImage(img, drange)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %q: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		err = png.Encode(f, encoded)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, encoded, nil)
	default:
		err = fmt.Errorf("unsupported image extension %q", filepath.Ext(filename))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encoding %q: %w", filename, err)
	}
	return f.Close()
}

// SaveGrid composes a batch into a grid and writes it to filename.
func SaveGrid(batch *tensor.Dense, filename string, drange Range, size *GridSize) error {
	grid, err := CreateGrid(batch, size)
	if err != nil {
		return err
	}
	return Save(grid, filename, drange)
}
