package augment

import (
	"fmt"
	"math/rand"

	"gorgonia.org/tensor"
)

// Mirror flips each image of an [n, c, h, w] batch horizontally with
// probability 0.5, decided independently per batch element. The input
// batch is left untouched.
func Mirror(rng *rand.Rand, batch *tensor.Dense) (*tensor.Dense, error) {
	return mirrorBatch(rng, batch, false)
}

// MirrorVertical is Mirror along the vertical axis (flips rows).
func MirrorVertical(rng *rand.Rand, batch *tensor.Dense) (*tensor.Dense, error) {
	return mirrorBatch(rng, batch, true)
}

func mirrorBatch(rng *rand.Rand, batch *tensor.Dense, vertical bool) (*tensor.Dense, error) {
	shape := batch.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("expected [n, c, h, w] batch, got shape %v", shape)
	}
	src, ok := batch.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 tensor, got %v", batch.Dtype())
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]

	dst := make([]float32, len(src))
	copy(dst, src)

	for i := 0; i < n; i++ {
		if rng.Float64() >= 0.5 {
			continue
		}
		for ch := 0; ch < c; ch++ {
			plane := ((i*c + ch) * h) * w
			if vertical {
				for y := 0; y < h/2; y++ {
					top := plane + y*w
					bottom := plane + (h-1-y)*w
					for x := 0; x < w; x++ {
						dst[top+x], dst[bottom+x] = dst[bottom+x], dst[top+x]
					}
				}
			} else {
				for y := 0; y < h; y++ {
					row := plane + y*w
					for x := 0; x < w/2; x++ {
						dst[row+x], dst[row+w-1-x] = dst[row+w-1-x], dst[row+x]
					}
				}
			}
		}
	}
	return tensor.New(tensor.WithShape(n, c, h, w), tensor.WithBacking(dst)), nil
}
