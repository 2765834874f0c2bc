package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

// OwnerKey returns a path-safe, non-reversible namespace for an owner id.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:16])
}

// SanitizeFileName keeps the base name only and rejects traversal.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = path.Base(s)
	if s == "" || s == "." || s == "/" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// ValidStorageKey rejects absolute keys and keys escaping their root.
func ValidStorageKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	clean := path.Clean(key)
	return clean == key && clean != ".." && !strings.HasPrefix(clean, "../")
}
