// Package datasets provides concrete snapshot.Source implementations.
package datasets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gorgonia.org/tensor"

	"github.com/styleml/gantrain/pkg/snapshot"
)

// DirSource draws labeled examples from a directory tree with one
// subdirectory per class, each holding PNG or JPEG files. Labels are
// one-hot vectors ordered by sorted class-directory name. Images decode
// to float32 [c, h, w] values in [0, 1]; all files must share the
// dimensions of the first one encountered.
type DirSource struct {
	rng     *rand.Rand
	classes []string
	files   [][]string
	shape   [3]int

	decoded map[string][]float32
}

var _ snapshot.Source = (*DirSource)(nil)

// OpenDir scans dir and builds a source drawing uniformly from rng.
func OpenDir(dir string, rng *rand.Rand) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset directory %q: %w", dir, err)
	}

	s := &DirSource{rng: rng, decoded: make(map[string][]float32)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		classDir := filepath.Join(dir, entry.Name())
		names, err := os.ReadDir(classDir)
		if err != nil {
			return nil, fmt.Errorf("reading class directory %q: %w", classDir, err)
		}
		var files []string
		for _, name := range names {
			if name.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(name.Name())) {
			case ".png", ".jpg", ".jpeg":
				files = append(files, filepath.Join(classDir, name.Name()))
			}
		}
		if len(files) == 0 {
			continue
		}
		s.classes = append(s.classes, entry.Name())
		s.files = append(s.files, files)
	}
	if len(s.classes) == 0 {
		return nil, fmt.Errorf("no class directories with images under %q", dir)
	}

	first, err := decodeImage(s.files[0][0])
	if err != nil {
		return nil, err
	}
	bounds := first.Bounds()
	channels := 3
	if _, ok := first.(*image.Gray); ok {
		channels = 1
	}
	s.shape = [3]int{channels, bounds.Dy(), bounds.Dx()}
	return s, nil
}

// Classes returns the class names in label order.
func (s *DirSource) Classes() []string {
	return append([]string(nil), s.classes...)
}

func (s *DirSource) ImageShape() [3]int { return s.shape }

func (s *DirSource) LabelSize() int { return len(s.classes) }

// Minibatch draws n examples uniformly over classes, then uniformly
// over the files of the chosen class.
func (s *DirSource) Minibatch(n int) (*tensor.Dense, *tensor.Dense, error) {
	c, h, w := s.shape[0], s.shape[1], s.shape[2]
	imageLen := c * h * w
	labelSize := len(s.classes)

	images := make([]float32, n*imageLen)
	labels := make([]float32, n*labelSize)

	for i := 0; i < n; i++ {
		class := s.rng.Intn(len(s.classes))
		files := s.files[class]
		path := files[s.rng.Intn(len(files))]
		pixels, err := s.load(path)
		if err != nil {
			return nil, nil, err
		}
		copy(images[i*imageLen:(i+1)*imageLen], pixels)
		labels[i*labelSize+class] = 1
	}

	return tensor.New(tensor.WithShape(n, c, h, w), tensor.WithBacking(images)),
		tensor.New(tensor.WithShape(n, labelSize), tensor.WithBacking(labels)),
		nil
}

func (s *DirSource) load(path string) ([]float32, error) {
	if pixels, ok := s.decoded[path]; ok {
		return pixels, nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	pixels, err := toCHW(img, s.shape)
	if err != nil {
		return nil, fmt.Errorf("converting %q: %w", path, err)
	}
	s.decoded[path] = pixels
	return pixels, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %q: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	return img, nil
}

func toCHW(img image.Image, shape [3]int) ([]float32, error) {
	c, h, w := shape[0], shape[1], shape[2]
	bounds := img.Bounds()
	if bounds.Dy() != h || bounds.Dx() != w {
		return nil, fmt.Errorf("image is %dx%d, dataset is %dx%d", bounds.Dx(), bounds.Dy(), w, h)
	}
	pixels := make([]float32, c*h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if c == 1 {
				g := color.GrayModel.Convert(px).(color.Gray)
				pixels[y*w+x] = float32(g.Y) / 255
				continue
			}
			r, g, b, _ := px.RGBA()
			pixels[0*h*w+y*w+x] = float32(r>>8) / 255
			pixels[1*h*w+y*w+x] = float32(g>>8) / 255
			pixels[2*h*w+y*w+x] = float32(b>>8) / 255
		}
	}
	return pixels, nil
}
