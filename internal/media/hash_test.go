package media

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumKnownValue(t *testing.T) {
	sum, err := Checksum(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", sum)
}

func TestChecksumFileMatchesStream(t *testing.T) {
	// Larger than one chunk so the fold loop actually iterates.
	payload := bytes.Repeat([]byte("abcdefgh"), 2048)
	path := filepath.Join(t.TempDir(), "clip.bin")
	require.NoError(t, os.WriteFile(path, payload, 0644))

	fromFile, err := ChecksumFile(path)
	require.NoError(t, err)
	fromStream, err := Checksum(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, fromStream, fromFile)
}

func TestChecksumDistinguishesContent(t *testing.T) {
	a, err := Checksum(bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	b, err := Checksum(bytes.NewReader([]byte("second")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestChecksumFileMissing(t *testing.T) {
	_, err := ChecksumFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
