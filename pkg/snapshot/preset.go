package snapshot

import (
	"fmt"

	"github.com/styleml/gantrain/pkg/imggrid"
)

// Preset selects the display resolution the snapshot grid is sized for.
// Column and row counts are derived from the image dimensions and
// clamped into preset-specific bounds so a grid is never degenerate.
type Preset int

const (
	Preset1080p Preset = iota
	Preset4K
	Preset8K
)

var presetNames = map[Preset]string{
	Preset1080p: "1080p",
	Preset4K:    "4k",
	Preset8K:    "8k",
}

func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// ParsePreset maps a preset name ("1080p", "4k", "8k") to its value.
func ParsePreset(s string) (Preset, error) {
	for p, name := range presetNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown display preset %q", s)
}

// GridSize computes the (columns, rows) layout for images of the given
// height and width, clamped into the preset's bounds.
func (p Preset) GridSize(imageH, imageW int) imggrid.GridSize {
	switch p {
	case Preset4K:
		return imggrid.GridSize{
			Cols: clamp(3840/imageW, 7, 32),
			Rows: clamp(2160/imageH, 4, 32),
		}
	case Preset8K:
		return imggrid.GridSize{
			Cols: clamp(7680/imageW, 7, 32),
			Rows: clamp(4320/imageH, 4, 32),
		}
	default:
		return imggrid.GridSize{
			Cols: clamp(1920/imageW, 3, 32),
			Rows: clamp(1080/imageH, 2, 32),
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Layout selects how grid contents are chosen.
type Layout int

const (
	// LayoutRandom fills the grid with one bulk draw.
	LayoutRandom Layout = iota
	// LayoutRowPerClass dedicates each row to one class.
	LayoutRowPerClass
	// LayoutColPerClass dedicates each column to one class.
	LayoutColPerClass
	// LayoutClass4x4 dedicates each 4x4 block to one class.
	LayoutClass4x4
)

var layoutNames = map[Layout]string{
	LayoutRandom:      "random",
	LayoutRowPerClass: "row_per_class",
	LayoutColPerClass: "col_per_class",
	LayoutClass4x4:    "class4x4",
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout maps a layout policy name to its value.
func ParseLayout(s string) (Layout, error) {
	for l, name := range layoutNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown grid layout %q", s)
}

// blockShape returns the per-class block dimensions (bw, bh) for the
// class-conditional layouts, and ok=false for LayoutRandom.
func (l Layout) blockShape(size imggrid.GridSize) (bw, bh int, ok bool) {
	switch l {
	case LayoutRowPerClass:
		return size.Cols, 1, true
	case LayoutColPerClass:
		return 1, size.Rows, true
	case LayoutClass4x4:
		return 4, 4, true
	default:
		return 0, 0, false
	}
}
