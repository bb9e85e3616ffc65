// Package imggrid composes batches of image tensors into preview grids
// and writes them out as standard raster files.
//
// Images are float32 tensors in channel-first layout: [c, h, w] for a
// single image, [n, c, h, w] for a batch. Single-channel batches may
// also omit the channel axis ([n, h, w]).
package imggrid

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Range describes the numeric interval pixel values are assumed to
// occupy. It is a conversion parameter only, never stored with data.
type Range struct {
	Lo float32
	Hi float32
}

// RangeUnit is the internal representation used by generator outputs.
var RangeUnit = Range{Lo: 0, Hi: 1}

// RangeByte is the displayable 8-bit representation.
var RangeByte = Range{Lo: 0, Hi: 255}

// AdjustDynamicRange rescales values from in to out via an affine
// transform. The input tensor is not modified. When in == out the
// result is an unchanged copy.
func AdjustDynamicRange(t *tensor.Dense, in, out Range) (*tensor.Dense, error) {
	src, ok := t.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 tensor, got %v", t.Dtype())
	}
	dst := make([]float32, len(src))
	copy(dst, src)
	if in != out {
		scale := (out.Hi - out.Lo) / (in.Hi - in.Lo)
		bias := out.Lo - in.Lo*scale
		for i := range dst {
			dst[i] = dst[i]*scale + bias
		}
	}
	return tensor.New(tensor.WithShape(t.Shape()...), tensor.WithBacking(dst)), nil
}
