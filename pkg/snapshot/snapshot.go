// Package snapshot selects representative training examples and lays
// them out as a fixed-size preview grid for periodic visual monitoring.
package snapshot

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/styleml/gantrain/pkg/imggrid"
)

// maxDraws caps the rejection-sampling loop of the class-conditional
// layouts. If the cap is reached before every block fills, the grid is
// returned partially filled with Complete set to false.
const maxDraws = 1000000

// Grid is a filled snapshot grid. Images is [cols*rows, c, h, w] and
// Labels is [cols*rows, labelSize]; cell i sits at column i % cols,
// row i / cols. Cells the sampler could not fill stay zero-valued.
type Grid struct {
	Size     imggrid.GridSize
	Images   *tensor.Dense
	Labels   *tensor.Dense
	Complete bool
}

// Setup draws examples from src and arranges them according to the
// display preset and layout policy.
//
// LayoutRandom performs one bulk draw of cols*rows examples. The
// class-conditional layouts draw single examples repeatedly, assigning
// each to the block matching its class index and skipping blocks that
// are already full by advancing in label-size steps; the loop stops
// when every block is full or after maxDraws draws, whichever comes
// first.
func Setup(src Source, preset Preset, layout Layout) (*Grid, error) {
	shape := src.ImageShape()
	c, h, w := shape[0], shape[1], shape[2]
	if c < 1 || h < 1 || w < 1 {
		return nil, fmt.Errorf("degenerate image shape %v", shape)
	}
	labelSize := src.LabelSize()

	size := preset.GridSize(h, w)
	cells := size.Cols * size.Rows
	imageLen := c * h * w

	reals := make([]float32, cells*imageLen)
	labels := make([]float32, cells*labelSize)
	grid := &Grid{Size: size, Complete: true}

	if bw, bh, ok := layout.blockShape(size); ok {
		if labelSize < 1 {
			return nil, fmt.Errorf("layout %v requires labeled examples, label size is %d", layout, labelSize)
		}
		complete, err := fillBalanced(src, size, bw, bh, imageLen, labelSize, reals, labels)
		if err != nil {
			return nil, err
		}
		grid.Complete = complete
	} else {
		images, drawn, err := src.Minibatch(cells)
		if err != nil {
			return nil, fmt.Errorf("drawing %d examples: %w", cells, err)
		}
		copyInto(reals, images, cells*imageLen)
		copyInto(labels, drawn, cells*labelSize)
	}

	grid.Images = tensor.New(tensor.WithShape(cells, c, h, w), tensor.WithBacking(reals))
	if labelSize > 0 {
		grid.Labels = tensor.New(tensor.WithShape(cells, labelSize), tensor.WithBacking(labels))
	}
	return grid, nil
}

type drawnExample struct {
	image []float32
	label []float32
}

func fillBalanced(src Source, size imggrid.GridSize, bw, bh, imageLen, labelSize int, reals, labels []float32) (bool, error) {
	nw := (size.Cols-1)/bw + 1
	nh := (size.Rows-1)/bh + 1
	blockCap := bw * bh
	blocks := make([][]drawnExample, nw*nh)

	complete := false
	for draw := 0; draw < maxDraws; draw++ {
		images, drawn, err := src.Minibatch(1)
		if err != nil {
			return false, fmt.Errorf("drawing example: %w", err)
		}
		image, ok := images.Data().([]float32)
		if !ok || len(image) < imageLen {
			return false, fmt.Errorf("short image draw: got %d values, want %d", len(image), imageLen)
		}
		label, ok := drawn.Data().([]float32)
		if !ok || len(label) != labelSize {
			// Malformed label; skip the draw rather than index out of bounds.
			continue
		}

		idx := argmax(label)
		for idx < len(blocks) && len(blocks[idx]) >= blockCap {
			idx += labelSize
		}
		if idx >= len(blocks) {
			continue
		}
		blocks[idx] = append(blocks[idx], drawnExample{
			image: append([]float32(nil), image[:imageLen]...),
			label: append([]float32(nil), label...),
		})
		if allFull(blocks, blockCap) {
			complete = true
			break
		}
	}

	for i, block := range blocks {
		for j, example := range block {
			x := (i%nw)*bw + j%bw
			y := (i/nw)*bh + j/bw
			if x >= size.Cols || y >= size.Rows {
				continue
			}
			cell := x + y*size.Cols
			copy(reals[cell*imageLen:(cell+1)*imageLen], example.image)
			copy(labels[cell*labelSize:(cell+1)*labelSize], example.label)
		}
	}
	return complete, nil
}

func allFull(blocks [][]drawnExample, blockCap int) bool {
	for _, block := range blocks {
		if len(block) < blockCap {
			return false
		}
	}
	return true
}

func argmax(values []float32) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func copyInto(dst []float32, src *tensor.Dense, want int) {
	if src == nil {
		return
	}
	data, ok := src.Data().([]float32)
	if !ok {
		return
	}
	if len(data) > want {
		data = data[:want]
	}
	copy(dst, data)
}
