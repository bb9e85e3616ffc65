package imggrid

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// GridSize is the (columns, rows) arrangement used to tile a batch of
// images into one composite image.
type GridSize struct {
	Cols int
	Rows int
}

// NearSquare derives a roughly square layout for n images.
func NearSquare(n int) GridSize {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols < 1 {
		cols = 1
	}
	rows := (n-1)/cols + 1
	if rows < 1 {
		rows = 1
	}
	return GridSize{Cols: cols, Rows: rows}
}

// CreateGrid tiles a batch of same-sized images into one larger image.
// The batch must be [n, c, h, w] or [n, h, w]; the result is
// [c, rows*h, cols*w] (respectively [rows*h, cols*w]). Image i lands at
// column i % cols, row i / cols. If size is nil a near-square layout is
// derived from the batch size. Cells beyond the batch stay zero.
func CreateGrid(batch *tensor.Dense, size *GridSize) (*tensor.Dense, error) {
	shape := batch.Shape()
	if len(shape) != 3 && len(shape) != 4 {
		return nil, fmt.Errorf("expected 3-d or 4-d batch, got shape %v", shape)
	}
	src, ok := batch.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("expected float32 tensor, got %v", batch.Dtype())
	}

	n := shape[0]
	h := shape[len(shape)-2]
	w := shape[len(shape)-1]
	channels := 1
	if len(shape) == 4 {
		channels = shape[1]
	}

	layout := NearSquare(n)
	if size != nil {
		layout = *size
	}
	if layout.Cols < 1 || layout.Rows < 1 {
		return nil, fmt.Errorf("degenerate grid size %dx%d", layout.Cols, layout.Rows)
	}

	gridH := layout.Rows * h
	gridW := layout.Cols * w
	dst := make([]float32, channels*gridH*gridW)

	for i := 0; i < n && i < layout.Cols*layout.Rows; i++ {
		x := (i % layout.Cols) * w
		y := (i / layout.Cols) * h
		for c := 0; c < channels; c++ {
			for row := 0; row < h; row++ {
				srcOff := ((i*channels+c)*h + row) * w
				dstOff := (c*gridH+y+row)*gridW + x
				copy(dst[dstOff:dstOff+w], src[srcOff:srcOff+w])
			}
		}
	}

	outShape := []int{channels, gridH, gridW}
	if len(shape) == 3 {
		outShape = []int{gridH, gridW}
	}
	return tensor.New(tensor.WithShape(outShape...), tensor.WithBacking(dst)), nil
}
