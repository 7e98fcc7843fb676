// Package payload carries the embedded loader DLL and stages it on disk.
//
// The loader is embedded gzip-compressed at build time. Its identity is the
// sha256 of the decompressed image, so every build stages to a distinct,
// content-addressed temp file shared by all tool instances of that build.
package payload

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"io"
	"sync"

	"github.com/pkg/errors"
)

//go:embed loader.dll.gz
var compressed []byte

// hashLen is the number of hex characters used in the staged filename.
const hashLen = 16

var (
	hashOnce sync.Once
	hashHex  string
	hashErr  error
)

// Hash returns the content hash of the decompressed loader image.
func Hash() (string, error) {
	hashOnce.Do(func() {
		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			hashErr = errors.Wrap(err, "open embedded loader")
			return
		}
		defer zr.Close()

		h := sha256.New()
		if _, err := io.Copy(h, zr); err != nil {
			hashErr = errors.Wrap(err, "hash embedded loader")
			return
		}
		hashHex = hex.EncodeToString(h.Sum(nil))[:hashLen]
	})
	return hashHex, hashErr
}

// Bytes decompresses the embedded loader image.
func Bytes() ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errors.Wrap(err, "open embedded loader")
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "decompress embedded loader")
	}
	return data, nil
}
