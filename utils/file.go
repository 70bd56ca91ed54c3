package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"strings"
)

// Sha256Hex returns the lowercase hex SHA-256 digest of data. Used as the
// identity of an uploaded PDF for dedup.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BytesMB converts a byte count to megabytes.
func BytesMB(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

// DirSizeMB returns the total size of all regular files under dir, in MB.
// A missing directory counts as zero.
func DirSizeMB(dir string) (float64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return BytesMB(total), nil
}

// SanitizeFilename strips path separators and control characters from an
// uploaded filename so it can never escape its course directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case r < 0x20:
			return -1
		default:
			return r
		}
	}, name)
}
