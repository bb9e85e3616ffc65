package augment

import (
	"math/rand"

	"gorgonia.org/tensor"
)

// TranslateX shifts the image horizontally by reflect-padding the width
// by a uniformly drawn fraction in [0, alpha] and taking a random crop
// at the original size. Border fill is reflected content, so the shift
// is content preserving.
func TranslateX(rng *rand.Rand, img *tensor.Dense, alpha float64) (*tensor.Dense, error) {
	return translate(rng, img, alpha, false, true)
}

// TranslateY is TranslateX along the vertical axis.
func TranslateY(rng *rand.Rand, img *tensor.Dense, alpha float64) (*tensor.Dense, error) {
	return translate(rng, img, alpha, true, false)
}

// TranslateXY shifts along both axes with a single drawn pad fraction.
func TranslateXY(rng *rand.Rand, img *tensor.Dense, alpha float64) (*tensor.Dense, error) {
	return translate(rng, img, alpha, true, true)
}

func translate(rng *rand.Rand, img *tensor.Dense, alpha float64, padY, padX bool) (*tensor.Dense, error) {
	m, err := asCHW(img)
	if err != nil {
		return nil, err
	}

	frac := rng.Float64() * alpha
	padH := 0
	padW := 0
	if padY {
		padH = int(float64(m.h) * frac)
	}
	if padX {
		padW = int(float64(m.w) * frac)
	}

	padded := reflectPad(m, padH, padW)
	return randomCrop(rng, padded, m.h, m.w).dense(), nil
}
