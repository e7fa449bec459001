package media

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-filter-api/internal/models"
)

func randomFrame(t *testing.T, w, h, c int) Frame {
	t.Helper()
	f := NewFrame(w, h, c)
	rng := rand.New(rand.NewSource(42))
	for i := range f.Pix {
		f.Pix[i] = byte(rng.Intn(256))
	}
	return f
}

func uniformFrame(w, h, c int, v byte) Frame {
	f := NewFrame(w, h, c)
	for i := range f.Pix {
		f.Pix[i] = v
	}
	return f
}

func TestNegativeIsInvolution(t *testing.T) {
	f := randomFrame(t, 16, 12, 3)
	twice := Negative(Negative(f))
	assert.Equal(t, f.Pix, twice.Pix, "applying negative twice must restore the frame")
}

func TestGrayscaleSingleChannel(t *testing.T) {
	f := NewFrame(2, 1, 3)
	// pixel 0: pure red (BGR order), pixel 1: pure white
	f.Pix = []byte{0, 0, 255, 255, 255, 255}

	out := Grayscale(f)
	require.Equal(t, 1, out.Channels)
	require.Len(t, out.Pix, 2)
	assert.Equal(t, byte(76), out.Pix[0], "pure red luma")
	assert.Equal(t, byte(255), out.Pix[1], "white stays white")
}

func TestGrayscaleOnGrayIsIdentity(t *testing.T) {
	f := randomFrame(t, 8, 8, 1)
	out := Grayscale(f)
	assert.Equal(t, f.Pix, out.Pix)
}

func TestSepiaKnownPixel(t *testing.T) {
	f := uniformFrame(1, 1, 3, 255)
	out := Sepia(f)
	// White through the fixed mix matrix: first row sums to 0.937, the
	// other two exceed 1 and saturate.
	assert.Equal(t, []byte{239, 255, 255}, out.Pix)
}

func TestBlurPreservesUniformFrame(t *testing.T) {
	f := uniformFrame(20, 20, 3, 100)
	out := GaussianBlur(f, blurKernelSize, 0)
	require.Equal(t, len(f.Pix), len(out.Pix))
	for i, v := range out.Pix {
		require.Equal(t, byte(100), v, "pixel %d changed on a flat frame", i)
	}
}

func TestBlurSmoothsImpulse(t *testing.T) {
	f := NewFrame(21, 21, 1)
	f.Pix[f.at(10, 10)] = 255

	out := GaussianBlur(f, blurKernelSize, 0)
	center := out.Pix[out.at(10, 10)]
	assert.Less(t, center, byte(255), "impulse must spread")
	assert.Greater(t, out.Pix[out.at(11, 10)], byte(0), "neighbor must pick up energy")
}

func TestEdgeUniformFrameIsBlack(t *testing.T) {
	f := uniformFrame(24, 24, 3, 180)
	out := EdgeDetect(f, edgeLowThresh, edgeHighThresh)
	require.Equal(t, 3, out.Channels)
	for i, v := range out.Pix {
		require.Equal(t, byte(0), v, "pixel %d marked edge on a flat frame", i)
	}
}

func TestEdgeFindsStepBoundary(t *testing.T) {
	f := NewFrame(32, 32, 3)
	for y := 0; y < 32; y++ {
		for x := 16; x < 32; x++ {
			i := f.at(x, y)
			f.Pix[i], f.Pix[i+1], f.Pix[i+2] = 255, 255, 255
		}
	}

	out := EdgeDetect(f, edgeLowThresh, edgeHighThresh)
	found := false
	for _, v := range out.Pix {
		require.Contains(t, []byte{0, 255}, v, "edge output must be binary")
		if v == 255 {
			found = true
		}
	}
	assert.True(t, found, "a hard vertical step must produce edges")

	// The three channels carry the same replicated edge plane.
	for i := 0; i < len(out.Pix); i += 3 {
		require.Equal(t, out.Pix[i], out.Pix[i+1])
		require.Equal(t, out.Pix[i], out.Pix[i+2])
	}
}

func TestPixelateProducesUniformBlocks(t *testing.T) {
	f := NewFrame(20, 20, 3)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			i := f.at(x, y)
			f.Pix[i] = byte(x * 12)
			f.Pix[i+1] = byte(y * 12)
			f.Pix[i+2] = byte((x + y) * 6)
		}
	}

	out := Pixelate(f, pixelateFactor)
	require.Equal(t, f.Width, out.Width)
	require.Equal(t, f.Height, out.Height)

	// 20/10 leaves a 2x2 downsample: four 10x10 mosaic blocks.
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			ref := out.at(bx*10, by*10)
			for y := by * 10; y < (by+1)*10; y++ {
				for x := bx * 10; x < (bx+1)*10; x++ {
					i := out.at(x, y)
					require.Equal(t, out.Pix[ref:ref+3], out.Pix[i:i+3],
						"block (%d,%d) not uniform at (%d,%d)", bx, by, x, y)
				}
			}
		}
	}
}

func TestPixelateTinyFrame(t *testing.T) {
	f := randomFrame(t, 4, 3, 3)
	out := Pixelate(f, pixelateFactor)
	assert.Equal(t, f.Width, out.Width)
	assert.Equal(t, f.Height, out.Height)
}

func TestApplyFilterChannelContract(t *testing.T) {
	f := randomFrame(t, 10, 10, 3)
	for _, filter := range models.Filters {
		out := ApplyFilter(filter, f)
		assert.Equal(t, filter.OutputChannels(), out.Channels, "filter %s", filter)
		assert.Equal(t, f.Width, out.Width, "filter %s", filter)
		assert.Equal(t, f.Height, out.Height, "filter %s", filter)
	}
}
