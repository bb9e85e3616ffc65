package augment

import (
	"math/rand"

	"gorgonia.org/tensor"
)

// ZoomIn crops a random region covering a uniformly drawn fraction in
// [1-alpha, 1) of the image and resizes it back to the target shape
// with bilinear interpolation. A non-positive target dimension defaults
// to the input dimension.
func ZoomIn(rng *rand.Rand, img *tensor.Dense, alpha float64, targetH, targetW int) (*tensor.Dense, error) {
	m, err := asCHW(img)
	if err != nil {
		return nil, err
	}
	targetH, targetW = targetOrDefault(targetH, targetW, m.h, m.w)

	frac := 1 - alpha + rng.Float64()*alpha
	cropH := int(float64(m.h) * frac)
	cropW := int(float64(m.w) * frac)
	if cropH < 1 {
		cropH = 1
	}
	if cropW < 1 {
		cropW = 1
	}

	cropped := randomCrop(rng, m, cropH, cropW)
	return bilinearResize(cropped, targetH, targetW).dense(), nil
}

// ZoomOut reflect-pads the image symmetrically by a uniformly drawn
// fraction in [0, alpha] of each spatial dimension, takes a random crop
// one pad larger than the original, and resizes to the target shape.
func ZoomOut(rng *rand.Rand, img *tensor.Dense, alpha float64, targetH, targetW int) (*tensor.Dense, error) {
	m, err := asCHW(img)
	if err != nil {
		return nil, err
	}
	targetH, targetW = targetOrDefault(targetH, targetW, m.h, m.w)

	frac := rng.Float64() * alpha
	padH := int(float64(m.h) * frac)
	padW := int(float64(m.w) * frac)

	padded := reflectPad(m, padH, padW)
	cropped := randomCrop(rng, padded, m.h+padH, m.w+padW)
	return bilinearResize(cropped, targetH, targetW).dense(), nil
}
