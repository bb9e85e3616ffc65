// Package augment implements stochastic image augmentations for
// training pipelines: mirroring, zoom, axis translation and cutout.
//
// Operators are pure: they never modify their input and hold no state
// across calls. All randomness comes from the *rand.Rand handle passed
// to each call, so a seeded generator gives reproducible output.
//
// Single images are float32 tensors in [c, h, w] layout; the mirror
// operators work on whole [n, c, h, w] batches.
package augment

import (
	"fmt"

	"gorgonia.org/tensor"
)

type chwImage struct {
	c, h, w int
	data    []float32
}

func asCHW(img *tensor.Dense) (chwImage, error) {
	shape := img.Shape()
	if len(shape) != 3 {
		return chwImage{}, fmt.Errorf("expected [c, h, w] image, got shape %v", shape)
	}
	data, ok := img.Data().([]float32)
	if !ok {
		return chwImage{}, fmt.Errorf("expected float32 tensor, got %v", img.Dtype())
	}
	return chwImage{c: shape[0], h: shape[1], w: shape[2], data: data}, nil
}

func (m chwImage) dense() *tensor.Dense {
	return tensor.New(tensor.WithShape(m.c, m.h, m.w), tensor.WithBacking(m.data))
}

func (m chwImage) clone() chwImage {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return chwImage{c: m.c, h: m.h, w: m.w, data: data}
}

func targetOrDefault(targetH, targetW, h, w int) (int, int) {
	if targetH <= 0 {
		targetH = h
	}
	if targetW <= 0 {
		targetW = w
	}
	return targetH, targetW
}
