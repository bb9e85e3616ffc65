package snapshot

import "gorgonia.org/tensor"

// Source provides labeled minibatches of training examples. The sampler
// treats it as an opaque, possibly inexhaustible generator; it never
// manages the source's lifecycle.
type Source interface {
	// ImageShape returns the per-example [c, h, w] dimensions.
	ImageShape() [3]int
	// LabelSize returns the length of the one-hot label vector.
	LabelSize() int
	// Minibatch draws n examples, returning an [n, c, h, w] float32
	// image tensor and an [n, labelSize] float32 label tensor.
	Minibatch(n int) (images, labels *tensor.Dense, err error)
}
