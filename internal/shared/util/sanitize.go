package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameBytes bounds stored object names; longer names keep their extension.
const MaxFileNameBytes = 180

// ErrInvalidFileName is returned for names that are empty or try to climb directories.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces an uploaded name to a single safe path segment.
func SanitizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	for _, seg := range strings.Split(name, "/") {
		if strings.TrimSpace(seg) == ".." {
			return "", ErrInvalidFileName
		}
	}

	base := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, path.Base(name))
	base = strings.Join(strings.Fields(base), " ")
	if base == "" || base == "." || base == "/" {
		return "", ErrInvalidFileName
	}
	return truncateKeepingExt(base, MaxFileNameBytes), nil
}

func truncateKeepingExt(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := path.Ext(name)
	if len(ext) >= limit/2 {
		ext = ""
	}
	stem := name[:limit-len(ext)]
	for !utf8.ValidString(stem) {
		stem = stem[:len(stem)-1]
	}
	return stem + ext
}
