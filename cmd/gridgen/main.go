package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/styleml/gantrain/pkg/datasets"
	"github.com/styleml/gantrain/pkg/imggrid"
	"github.com/styleml/gantrain/pkg/snapshot"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := klog.FromContext(ctx)

	dataDir := ""
	out := "grid.png"
	sizeName := "1080p"
	layoutName := "random"
	var seed int64
	flag.StringVar(&dataDir, "data", dataDir, "dataset directory (one subdirectory per class)")
	flag.StringVar(&out, "out", out, "output image file (.png or .jpg)")
	flag.StringVar(&sizeName, "size", sizeName, "display preset: 1080p, 4k or 8k")
	flag.StringVar(&layoutName, "layout", layoutName, "grid layout: random, row_per_class, col_per_class or class4x4")
	flag.Int64Var(&seed, "seed", seed, "random seed (0 picks a time-based seed)")
	flag.Parse()

	if dataDir == "" {
		return fmt.Errorf("must specify -data")
	}

	preset, err := snapshot.ParsePreset(sizeName)
	if err != nil {
		return err
	}
	layout, err := snapshot.ParseLayout(layoutName)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	src, err := datasets.OpenDir(dataDir, rng)
	if err != nil {
		return err
	}
	log.Info("opened dataset", "dir", dataDir, "classes", src.LabelSize(), "shape", src.ImageShape())

	grid, err := snapshot.Setup(src, preset, layout)
	if err != nil {
		return fmt.Errorf("building snapshot grid: %w", err)
	}
	if !grid.Complete {
		log.Info("snapshot grid only partially filled", "layout", layout.String())
	}

	if err := imggrid.SaveGrid(grid.Images, out, imggrid.RangeUnit, &grid.Size); err != nil {
		return fmt.Errorf("writing grid image: %w", err)
	}

	log.Info("wrote snapshot grid", "path", out, "cols", grid.Size.Cols, "rows", grid.Size.Rows, "seed", seed)
	return nil
}
