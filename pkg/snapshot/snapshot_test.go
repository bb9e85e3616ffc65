package snapshot

import (
	"testing"

	"gorgonia.org/tensor"
)

// cycleSource produces examples whose pixels all carry the value
// class+1 and whose one-hot labels cycle through the classes in order.
// A singleClass >= 0 pins every draw to that class instead.
type cycleSource struct {
	classes     int
	c, h, w     int
	singleClass int
	next        int
	draws       int
}

func newCycleSource(classes, c, h, w int) *cycleSource {
	return &cycleSource{classes: classes, c: c, h: h, w: w, singleClass: -1}
}

func (s *cycleSource) ImageShape() [3]int { return [3]int{s.c, s.h, s.w} }

func (s *cycleSource) LabelSize() int { return s.classes }

func (s *cycleSource) Minibatch(n int) (*tensor.Dense, *tensor.Dense, error) {
	imageLen := s.c * s.h * s.w
	images := make([]float32, n*imageLen)
	labels := make([]float32, n*s.classes)
	for i := 0; i < n; i++ {
		class := s.singleClass
		if class < 0 {
			class = s.next % s.classes
			s.next++
		}
		for j := 0; j < imageLen; j++ {
			images[i*imageLen+j] = float32(class + 1)
		}
		labels[i*s.classes+class] = 1
		s.draws++
	}
	return tensor.New(tensor.WithShape(n, s.c, s.h, s.w), tensor.WithBacking(images)),
		tensor.New(tensor.WithShape(n, s.classes), tensor.WithBacking(labels)),
		nil
}

func classOfCell(t *testing.T, grid *Grid, labelSize, cell int) int {
	t.Helper()
	labels := grid.Labels.Data().([]float32)
	best := -1
	for k := 0; k < labelSize; k++ {
		if labels[cell*labelSize+k] == 1 {
			if best >= 0 {
				t.Fatalf("cell %d has more than one hot label entry", cell)
			}
			best = k
		}
	}
	return best
}

func TestPresetGridSizes(t *testing.T) {
	cases := []struct {
		preset Preset
		h, w   int
		cols   int
		rows   int
	}{
		{Preset1080p, 120, 120, 16, 9},
		{Preset1080p, 1024, 1024, 3, 2},   // clamped to minimums
		{Preset1080p, 16, 16, 32, 32},     // clamped to maximums
		{Preset4K, 256, 256, 15, 8},
		{Preset4K, 1024, 1024, 7, 4},
		{Preset8K, 512, 512, 15, 8},
	}
	for _, tc := range cases {
		got := tc.preset.GridSize(tc.h, tc.w)
		if got.Cols != tc.cols || got.Rows != tc.rows {
			t.Errorf("%v with %dx%d images: got %dx%d, want %dx%d",
				tc.preset, tc.w, tc.h, got.Cols, got.Rows, tc.cols, tc.rows)
		}
	}
}

func TestSetupRandomLayout(t *testing.T) {
	// 120x120 images on a 1080p preset give a 16x9 grid.
	src := newCycleSource(5, 1, 120, 120)

	grid, err := Setup(src, Preset1080p, LayoutRandom)
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	if grid.Size.Cols != 16 || grid.Size.Rows != 9 {
		t.Fatalf("grid size %dx%d, want 16x9", grid.Size.Cols, grid.Size.Rows)
	}
	shape := grid.Images.Shape()
	if shape[0] != 144 || shape[1] != 1 || shape[2] != 120 || shape[3] != 120 {
		t.Fatalf("unexpected images shape %v", shape)
	}
	if lshape := grid.Labels.Shape(); lshape[0] != 144 || lshape[1] != 5 {
		t.Fatalf("unexpected labels shape %v", lshape)
	}
	if !grid.Complete {
		t.Fatalf("random layout reported incomplete grid")
	}

	// Labels must align with image content index for index.
	images := grid.Images.Data().([]float32)
	imageLen := 120 * 120
	for cell := 0; cell < 144; cell++ {
		class := classOfCell(t, grid, 5, cell)
		if class < 0 {
			t.Fatalf("cell %d has no hot label entry", cell)
		}
		if got := images[cell*imageLen]; got != float32(class+1) {
			t.Fatalf("cell %d: image encodes class %v, label says %d", cell, got, class+1)
		}
	}
}

func TestSetupRowPerClass(t *testing.T) {
	// 640x540 images on 1080p give a 3x2 grid: 2 row blocks of 3 cells.
	src := newCycleSource(2, 1, 540, 640)

	grid, err := Setup(src, Preset1080p, LayoutRowPerClass)
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if grid.Size.Cols != 3 || grid.Size.Rows != 2 {
		t.Fatalf("grid size %dx%d, want 3x2", grid.Size.Cols, grid.Size.Rows)
	}
	if !grid.Complete {
		t.Fatalf("expected complete grid, source cycles through both classes")
	}

	// Row y holds class y.
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			class := classOfCell(t, grid, 2, x+y*3)
			if class != y {
				t.Fatalf("cell (%d,%d): got class %d, want %d", x, y, class, y)
			}
		}
	}
}

func TestSetupColPerClass(t *testing.T) {
	src := newCycleSource(3, 1, 540, 640)

	grid, err := Setup(src, Preset1080p, LayoutColPerClass)
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if grid.Size.Cols != 3 || grid.Size.Rows != 2 {
		t.Fatalf("grid size %dx%d, want 3x2", grid.Size.Cols, grid.Size.Rows)
	}
	if !grid.Complete {
		t.Fatalf("expected complete grid with 3 cycling classes")
	}
	// Column x holds class x.
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			class := classOfCell(t, grid, 3, x+y*3)
			if class != x {
				t.Fatalf("cell (%d,%d): got class %d, want %d", x, y, class, x)
			}
		}
	}
}

func TestSetupBalancedDegradesAtDrawCap(t *testing.T) {
	// Tiny images keep the 1e6-draw exhaustion cheap. The source only
	// ever produces class 0 while advertising more classes than the
	// grid has row blocks, so every block but the first stays empty.
	src := newCycleSource(40, 1, 4, 4)
	src.singleClass = 0

	grid, err := Setup(src, Preset1080p, LayoutRowPerClass)
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if grid.Complete {
		t.Fatalf("expected degraded grid, all draws were class 0")
	}
	if src.draws != maxDraws {
		t.Fatalf("sampler stopped after %d draws, want %d", src.draws, maxDraws)
	}

	// Row 0 is filled with class 0; row 1 must be zero-valued defaults.
	images := grid.Images.Data().([]float32)
	labels := grid.Labels.Data().([]float32)
	imageLen := 4 * 4
	cols := grid.Size.Cols
	for x := 0; x < cols; x++ {
		if images[(x+0*cols)*imageLen] != 1 {
			t.Fatalf("row 0 cell %d not filled with class 0", x)
		}
	}
	for x := 0; x < cols; x++ {
		cell := x + 1*cols
		if images[cell*imageLen] != 0 {
			t.Fatalf("row 1 cell %d unexpectedly filled", x)
		}
		for k := 0; k < 40; k++ {
			if labels[cell*40+k] != 0 {
				t.Fatalf("row 1 cell %d has nonzero label", x)
			}
		}
	}
}

func TestSetupSkipsMalformedLabels(t *testing.T) {
	src := &shortLabelSource{inner: newCycleSource(2, 1, 540, 640)}

	grid, err := Setup(src, Preset1080p, LayoutRowPerClass)
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if !grid.Complete {
		t.Fatalf("well-formed draws should still fill the grid")
	}
}

// shortLabelSource returns a truncated label on every third draw.
type shortLabelSource struct {
	inner *cycleSource
	count int
}

func (s *shortLabelSource) ImageShape() [3]int { return s.inner.ImageShape() }
func (s *shortLabelSource) LabelSize() int     { return s.inner.LabelSize() }

func (s *shortLabelSource) Minibatch(n int) (*tensor.Dense, *tensor.Dense, error) {
	images, labels, err := s.inner.Minibatch(n)
	if err != nil {
		return nil, nil, err
	}
	s.count++
	if s.count%3 == 0 {
		bad := make([]float32, 1)
		labels = tensor.New(tensor.WithShape(1, 1), tensor.WithBacking(bad))
	}
	return images, labels, nil
}

func TestParsePresetAndLayout(t *testing.T) {
	if _, err := ParsePreset("720p"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
	p, err := ParsePreset("4k")
	if err != nil || p != Preset4K {
		t.Fatalf("ParsePreset(4k) = %v, %v", p, err)
	}
	if _, err := ParseLayout("diagonal"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
	l, err := ParseLayout("class4x4")
	if err != nil || l != LayoutClass4x4 {
		t.Fatalf("ParseLayout(class4x4) = %v, %v", l, err)
	}
}
