package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterAcceptsAllSix(t *testing.T) {
	for _, name := range []string{"grayscale", "blur", "edge", "pixelate", "sepia", "negative"} {
		f, err := ParseFilter(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.String())
	}
}

func TestParseFilterRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "Grayscale", "invert", "GRAYSCALE ", "mosaic"} {
		_, err := ParseFilter(name)
		assert.Error(t, err, "%q must not parse", name)
	}
}

func TestOutputChannels(t *testing.T) {
	assert.Equal(t, 1, FilterGrayscale.OutputChannels())
	for _, f := range []Filter{FilterBlur, FilterEdge, FilterPixelate, FilterSepia, FilterNegative} {
		assert.Equal(t, 3, f.OutputChannels(), f)
	}
}
