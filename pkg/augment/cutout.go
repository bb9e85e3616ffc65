package augment

import (
	"math/rand"

	"gorgonia.org/tensor"
)

// Cutout erases a random square from the image, setting it to zero
// across all channels. The side length is drawn uniformly from
// [0, alpha*min(h, w)) and the top-left corner uniformly among the
// positions that keep the square in bounds. A zero-sized draw returns
// the image unmodified (as a copy). Pixels outside the square are
// bit-identical to the input.
func Cutout(rng *rand.Rand, img *tensor.Dense, alpha float64) (*tensor.Dense, error) {
	m, err := asCHW(img)
	if err != nil {
		return nil, err
	}

	out := m.clone()

	minDim := m.w
	if m.h < minDim {
		minDim = m.h
	}
	maxSide := int(alpha * float64(minDim))
	if maxSide <= 0 {
		return out.dense(), nil
	}
	side := rng.Intn(maxSide)
	if side == 0 {
		return out.dense(), nil
	}

	x := 0
	if m.w-side > 0 {
		x = rng.Intn(m.w - side)
	}
	y := 0
	if m.h-side > 0 {
		y = rng.Intn(m.h - side)
	}

	for c := 0; c < m.c; c++ {
		for row := y; row < y+side; row++ {
			off := (c*m.h + row) * m.w
			for col := x; col < x+side; col++ {
				out.data[off+col] = 0
			}
		}
	}
	return out.dense(), nil
}
