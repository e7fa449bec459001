package media

import (
	"math"

	"video-filter-api/internal/models"
)

// Filter parameters. These are fixed by contract: every processed video of a
// given filter must look the same regardless of configuration.
const (
	blurKernelSize = 15
	edgeLowThresh  = 50.0
	edgeHighThresh = 150.0
	pixelateFactor = 10
)

// sepiaMatrix mixes the BGR channel vector of each pixel: out[i] is the dot
// product of row i with (B, G, R).
var sepiaMatrix = [3][3]float64{
	{0.272, 0.534, 0.131},
	{0.349, 0.686, 0.168},
	{0.393, 0.769, 0.189},
}

// ApplyFilter runs one per-frame transform. The switch is exhaustive over
// the closed Filter enumeration; filter names are validated once at the
// request boundary, so no default error path exists here.
func ApplyFilter(filter models.Filter, f Frame) Frame {
	switch filter {
	case models.FilterGrayscale:
		return Grayscale(f)
	case models.FilterBlur:
		return GaussianBlur(f, blurKernelSize, 0)
	case models.FilterEdge:
		return EdgeDetect(f, edgeLowThresh, edgeHighThresh)
	case models.FilterPixelate:
		return Pixelate(f, pixelateFactor)
	case models.FilterSepia:
		return Sepia(f)
	case models.FilterNegative:
		return Negative(f)
	}
	return f
}

// Grayscale converts a BGR frame to single-channel luma (BT.601 weights).
func Grayscale(f Frame) Frame {
	if f.Channels == 1 {
		return f
	}
	out := NewFrame(f.Width, f.Height, 1)
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+1 {
		b := float64(f.Pix[i])
		g := float64(f.Pix[i+1])
		r := float64(f.Pix[i+2])
		out.Pix[j] = clampByte(0.114*b + 0.587*g + 0.299*r)
	}
	return out
}

// GaussianBlur smooths each channel with a size×size kernel. A sigma of zero
// derives one from the kernel size the same way OpenCV does, so the fixed
// 15×15 blur matches the reference output.
func GaussianBlur(f Frame, size int, sigma float64) Frame {
	kernel := gaussianKernel(size, sigma)
	half := size / 2

	// Separable: horizontal pass into a float buffer, then vertical.
	tmp := make([]float64, len(f.Pix))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			for c := 0; c < f.Channels; c++ {
				var sum float64
				for k := -half; k <= half; k++ {
					sx := clampInt(x+k, f.Width)
					sum += kernel[k+half] * float64(f.Pix[f.at(sx, y)+c])
				}
				tmp[f.at(x, y)+c] = sum
			}
		}
	}

	out := NewFrame(f.Width, f.Height, f.Channels)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			for c := 0; c < f.Channels; c++ {
				var sum float64
				for k := -half; k <= half; k++ {
					sy := clampInt(y+k, f.Height)
					sum += kernel[k+half] * tmp[f.at(x, sy)+c]
				}
				out.Pix[out.at(x, y)+c] = clampByte(sum)
			}
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D kernel. Sigma <= 0 auto-derives
// from the size: 0.3*((size-1)*0.5 - 1) + 0.8.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// EdgeDetect runs a Canny-style detector: luma conversion, smoothing, Sobel
// gradients, non-maximum suppression, then hysteresis between the low and
// high thresholds. The single binary edge channel is replicated back to
// three channels so the output container stays color-consistent with the
// other filters.
func EdgeDetect(f Frame, low, high float64) Frame {
	gray := Grayscale(f)
	smoothed := GaussianBlur(gray, 5, 1.4)

	w, h := f.Width, f.Height
	gx := make([]float64, w*h)
	gy := make([]float64, w*h)
	mag := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := func(dx, dy int) float64 {
				return float64(smoothed.Pix[clampInt(y+dy, h)*w+clampInt(x+dx, w)])
			}
			sx := -px(-1, -1) - 2*px(-1, 0) - px(-1, 1) +
				px(1, -1) + 2*px(1, 0) + px(1, 1)
			sy := -px(-1, -1) - 2*px(0, -1) - px(1, -1) +
				px(-1, 1) + 2*px(0, 1) + px(1, 1)
			i := y*w + x
			gx[i], gy[i] = sx, sy
			mag[i] = math.Hypot(sx, sy)
		}
	}

	// Non-maximum suppression along the quantized gradient direction.
	const (
		none = iota
		weak
		strong
	)
	marks := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if mag[i] < low {
				continue
			}
			dx, dy := neighborOffset(gx[i], gy[i])
			n1 := clampInt(y+dy, h)*w + clampInt(x+dx, w)
			n2 := clampInt(y-dy, h)*w + clampInt(x-dx, w)
			if mag[i] < mag[n1] || mag[i] < mag[n2] {
				continue
			}
			if mag[i] >= high {
				marks[i] = strong
			} else {
				marks[i] = weak
			}
		}
	}

	// Hysteresis: weak edges survive only when connected to a strong one.
	stack := make([]int, 0, w*h/8)
	for i, m := range marks {
		if m == strong {
			stack = append(stack, i)
		}
	}
	edges := make([]byte, w*h)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if edges[i] != 0 {
			continue
		}
		edges[i] = 255
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				n := ny*w + nx
				if marks[n] != none && edges[n] == 0 {
					stack = append(stack, n)
				}
			}
		}
	}

	out := NewFrame(w, h, 3)
	for i, v := range edges {
		out.Pix[i*3] = v
		out.Pix[i*3+1] = v
		out.Pix[i*3+2] = v
	}
	return out
}

// neighborOffset quantizes a gradient direction into one of four neighbor
// axes for non-maximum suppression.
func neighborOffset(gx, gy float64) (int, int) {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return 1, 0
	case angle < 67.5:
		return 1, 1
	case angle < 112.5:
		return 0, 1
	default:
		return -1, 1
	}
}

// Pixelate downsamples by the given factor with bilinear interpolation and
// scales back up with nearest-neighbor; the mosaic blocks fall directly out
// of the two-step resample.
func Pixelate(f Frame, factor int) Frame {
	smallW := f.Width / factor
	smallH := f.Height / factor
	if smallW < 1 {
		smallW = 1
	}
	if smallH < 1 {
		smallH = 1
	}

	small := resizeBilinear(f, smallW, smallH)
	return resizeNearest(small, f.Width, f.Height)
}

func resizeBilinear(f Frame, dstW, dstH int) Frame {
	out := NewFrame(dstW, dstH, f.Channels)
	scaleX := float64(f.Width) / float64(dstW)
	scaleY := float64(f.Height) / float64(dstH)
	for y := 0; y < dstH; y++ {
		sy := (float64(y)+0.5)*scaleY - 0.5
		y0 := clampInt(int(math.Floor(sy)), f.Height)
		y1 := clampInt(y0+1, f.Height)
		fy := sy - math.Floor(sy)
		if sy < 0 {
			fy = 0
		}
		for x := 0; x < dstW; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			x0 := clampInt(int(math.Floor(sx)), f.Width)
			x1 := clampInt(x0+1, f.Width)
			fx := sx - math.Floor(sx)
			if sx < 0 {
				fx = 0
			}
			for c := 0; c < f.Channels; c++ {
				top := float64(f.Pix[f.at(x0, y0)+c])*(1-fx) + float64(f.Pix[f.at(x1, y0)+c])*fx
				bot := float64(f.Pix[f.at(x0, y1)+c])*(1-fx) + float64(f.Pix[f.at(x1, y1)+c])*fx
				out.Pix[out.at(x, y)+c] = clampByte(top*(1-fy) + bot*fy)
			}
		}
	}
	return out
}

func resizeNearest(f Frame, dstW, dstH int) Frame {
	out := NewFrame(dstW, dstH, f.Channels)
	for y := 0; y < dstH; y++ {
		sy := clampInt(y*f.Height/dstH, f.Height)
		for x := 0; x < dstW; x++ {
			sx := clampInt(x*f.Width/dstW, f.Width)
			src := f.at(sx, sy)
			dst := out.at(x, y)
			copy(out.Pix[dst:dst+f.Channels], f.Pix[src:src+f.Channels])
		}
	}
	return out
}

// Sepia applies the fixed color-mixing matrix to every pixel's BGR vector,
// saturating at 255.
func Sepia(f Frame) Frame {
	out := NewFrame(f.Width, f.Height, f.Channels)
	for i := 0; i < len(f.Pix); i += 3 {
		b := float64(f.Pix[i])
		g := float64(f.Pix[i+1])
		r := float64(f.Pix[i+2])
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = clampByte(sepiaMatrix[c][0]*b + sepiaMatrix[c][1]*g + sepiaMatrix[c][2]*r)
		}
	}
	return out
}

// Negative inverts every channel. Applying it twice restores the original
// frame exactly.
func Negative(f Frame) Frame {
	out := NewFrame(f.Width, f.Height, f.Channels)
	for i, v := range f.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}
