package augment

import "math/rand"

// reflectIndex maps a possibly out-of-bounds coordinate into [0, n)
// by mirroring around the borders without repeating the edge pixel.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2*n - 2
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}

// reflectPad extends the image by padH rows on the top and bottom and
// padW columns on the left and right, filling the border by mirroring
// edge pixels outward.
func reflectPad(img chwImage, padH, padW int) chwImage {
	outH := img.h + 2*padH
	outW := img.w + 2*padW
	out := chwImage{c: img.c, h: outH, w: outW, data: make([]float32, img.c*outH*outW)}
	for c := 0; c < img.c; c++ {
		for y := 0; y < outH; y++ {
			sy := reflectIndex(y-padH, img.h)
			srcRow := (c*img.h + sy) * img.w
			dstRow := (c*outH + y) * outW
			for x := 0; x < outW; x++ {
				sx := reflectIndex(x-padW, img.w)
				out.data[dstRow+x] = img.data[srcRow+sx]
			}
		}
	}
	return out
}

// randomCrop takes a cropH x cropW window at a uniformly drawn
// in-bounds position. Crop dimensions must not exceed the image.
func randomCrop(rng *rand.Rand, img chwImage, cropH, cropW int) chwImage {
	y0 := 0
	if img.h > cropH {
		y0 = rng.Intn(img.h - cropH + 1)
	}
	x0 := 0
	if img.w > cropW {
		x0 = rng.Intn(img.w - cropW + 1)
	}
	return crop(img, y0, x0, cropH, cropW)
}

func crop(img chwImage, y0, x0, cropH, cropW int) chwImage {
	out := chwImage{c: img.c, h: cropH, w: cropW, data: make([]float32, img.c*cropH*cropW)}
	for c := 0; c < img.c; c++ {
		for y := 0; y < cropH; y++ {
			srcOff := (c*img.h+y0+y)*img.w + x0
			dstOff := (c*cropH + y) * cropW
			copy(out.data[dstOff:dstOff+cropW], img.data[srcOff:srcOff+cropW])
		}
	}
	return out
}

// bilinearResize scales the image to targetH x targetW using bilinear
// interpolation with half-pixel sample centers. Resizing to the same
// dimensions reproduces the input exactly.
func bilinearResize(img chwImage, targetH, targetW int) chwImage {
	if targetH == img.h && targetW == img.w {
		return img.clone()
	}
	out := chwImage{c: img.c, h: targetH, w: targetW, data: make([]float32, img.c*targetH*targetW)}
	scaleY := float64(img.h) / float64(targetH)
	scaleX := float64(img.w) / float64(targetW)
	for y := 0; y < targetH; y++ {
		sy := (float64(y)+0.5)*scaleY - 0.5
		y0, fy := splitCoord(sy, img.h)
		y1 := y0 + 1
		if y1 > img.h-1 {
			y1 = img.h - 1
		}
		for x := 0; x < targetW; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			x0, fx := splitCoord(sx, img.w)
			x1 := x0 + 1
			if x1 > img.w-1 {
				x1 = img.w - 1
			}
			for c := 0; c < img.c; c++ {
				plane := c * img.h * img.w
				v00 := float64(img.data[plane+y0*img.w+x0])
				v01 := float64(img.data[plane+y0*img.w+x1])
				v10 := float64(img.data[plane+y1*img.w+x0])
				v11 := float64(img.data[plane+y1*img.w+x1])
				top := v00 + (v01-v00)*fx
				bottom := v10 + (v11-v10)*fx
				out.data[(c*targetH+y)*targetW+x] = float32(top + (bottom-top)*fy)
			}
		}
	}
	return out
}

func splitCoord(s float64, n int) (int, float64) {
	if s <= 0 {
		return 0, 0
	}
	if s >= float64(n-1) {
		return n - 1, 0
	}
	i := int(s)
	return i, s - float64(i)
}
