package augment

import (
	"math"
	"math/rand"
	"testing"

	"gorgonia.org/tensor"
)

func gradientImage(c, h, w int) *tensor.Dense {
	data := make([]float32, c*h*w)
	for i := range data {
		data[i] = float32(i) / float32(len(data))
	}
	return tensor.New(tensor.WithShape(c, h, w), tensor.WithBacking(data))
}

func TestZoomInZeroAlphaIsIdentity(t *testing.T) {
	img := gradientImage(3, 8, 8)
	out, err := ZoomIn(rand.New(rand.NewSource(1)), img, 0, 0, 0)
	if err != nil {
		t.Fatalf("ZoomIn error: %v", err)
	}
	src := img.Data().([]float32)
	dst := out.Data().([]float32)
	for i := range src {
		if math.Abs(float64(src[i]-dst[i])) > 1e-6 {
			t.Fatalf("zero-alpha zoom changed pixel %d: %v -> %v", i, src[i], dst[i])
		}
	}
}

func TestZoomInTargetShape(t *testing.T) {
	img := gradientImage(3, 10, 12)
	out, err := ZoomIn(rand.New(rand.NewSource(4)), img, 0.2, 6, 7)
	if err != nil {
		t.Fatalf("ZoomIn error: %v", err)
	}
	shape := out.Shape()
	if shape[0] != 3 || shape[1] != 6 || shape[2] != 7 {
		t.Fatalf("unexpected output shape %v", shape)
	}
}

func TestZoomPreservesConstantImages(t *testing.T) {
	img := filledImage(3, 9, 9, 0.75)
	for seed := int64(0); seed < 5; seed++ {
		in, err := ZoomIn(rand.New(rand.NewSource(seed)), img, 0.3, 0, 0)
		if err != nil {
			t.Fatalf("ZoomIn error: %v", err)
		}
		outImg, err := ZoomOut(rand.New(rand.NewSource(seed)), img, 0.3, 0, 0)
		if err != nil {
			t.Fatalf("ZoomOut error: %v", err)
		}
		for _, result := range []*tensor.Dense{in, outImg} {
			for i, v := range result.Data().([]float32) {
				if math.Abs(float64(v-0.75)) > 1e-5 {
					t.Fatalf("seed %d: constant image disturbed at %d: %v", seed, i, v)
				}
			}
		}
	}
}

func TestZoomOutShape(t *testing.T) {
	img := gradientImage(1, 8, 6)
	out, err := ZoomOut(rand.New(rand.NewSource(11)), img, 0.25, 0, 0)
	if err != nil {
		t.Fatalf("ZoomOut error: %v", err)
	}
	shape := out.Shape()
	if shape[0] != 1 || shape[1] != 8 || shape[2] != 6 {
		t.Fatalf("unexpected output shape %v", shape)
	}
}

func TestZoomRejectsBatchInput(t *testing.T) {
	batch := tensor.New(tensor.WithShape(2, 1, 4, 4), tensor.WithBacking(make([]float32, 32)))
	if _, err := ZoomIn(rand.New(rand.NewSource(1)), batch, 0.1, 0, 0); err == nil {
		t.Fatalf("expected error for 4-d input")
	}
}
