package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 29.97002997002997},
		{"30", 30},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
		{"24/0", 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, parseRate(tc.in), 1e-9, "rate %q", tc.in)
	}
}

func TestFrameIndicesEvenSpacing(t *testing.T) {
	assert.Equal(t, []int{0, 25, 50, 74, 99}, frameIndices(100, 5))
	assert.Equal(t, []int{0, 59}, frameIndices(60, 2))
	assert.Equal(t, []int{0}, frameIndices(1, 5))
	assert.Equal(t, []int{0}, frameIndices(100, 1))
}

func TestProbeDegradesToZeroMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("junk bytes"), 0644))

	// Point at a binary that cannot exist so both decode paths fail; the
	// probe must still report the file size and zeroes elsewhere.
	p := &Prober{FFprobePath: filepath.Join(t.TempDir(), "missing-ffprobe")}
	meta := p.Probe(context.Background(), path)

	assert.Equal(t, int64(10), meta.SizeBytes)
	assert.Zero(t, meta.DurationSec)
	assert.Zero(t, meta.FPS)
	assert.Zero(t, meta.Width)
	assert.Zero(t, meta.Height)
}
