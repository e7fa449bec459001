package media

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashChunkSize = 4096

// ChecksumFile computes the content fingerprint of a file by folding
// fixed-size chunks into a running MD5 state, so memory use stays constant
// regardless of file size. The result is an equality key for duplicate
// detection, not a security primitive.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Checksum(f)
}

// Checksum computes the content fingerprint of a byte stream.
func Checksum(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
