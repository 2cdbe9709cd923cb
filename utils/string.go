package utils

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// CompressString gzips the input and returns it base64 encoded, so the result
// can be stored inside a JSON cache entry.
func CompressString(input string) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(zw, input); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecompressString reverses CompressString.
func DecompressString(input string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return "", err
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CleanLyrics strips the escaping artifacts scraped lyrics tend to carry.
func CleanLyrics(lyrics string) string {
	lyrics = strings.ReplaceAll(lyrics, "&amp;", "&")
	lyrics = strings.ReplaceAll(lyrics, "`", "'")
	return strings.TrimSpace(lyrics)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with sep.
// Non-ASCII letters are dropped.
func Slugify(s, sep string) string {
	s = strings.ToLower(s)
	s = nonSlug.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), sep)
}

// Squash keeps only lower-cased ASCII letters and digits.
func Squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
