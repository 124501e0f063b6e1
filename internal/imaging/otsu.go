package imaging

import "image"

// OtsuThreshold computes a binarization threshold by maximizing inter-class
// variance over the 256-level histogram. Ties keep the first threshold that
// reaches the maximum. Returns -1 for an empty image.
func OtsuThreshold(gray *image.Gray) int {
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return -1
	}

	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.Pix[gray.PixOffset(x, y)]]++
		}
	}

	var sumTotal float64
	for t, n := range hist {
		sumTotal += float64(t) * float64(n)
	}

	var sumB, wB float64
	varMax := 0.0
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumTotal - sumB) / wF
		varBetween := wB * wF * (mB - mF) * (mB - mF)
		if varBetween > varMax {
			varMax = varBetween
			threshold = t
		}
	}
	return threshold
}
