package srptd

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	tagWhitespace = regexp.MustCompile(`\s+`)
	tagStrip      = regexp.MustCompile(`[^\w\-]`)
)

// NormalizeTag normalizes a tag to lowercase with dashes. The operation is
// idempotent: normalizing an already normalized tag returns it unchanged.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = tagWhitespace.ReplaceAllString(tag, "-")
	return tagStrip.ReplaceAllString(tag, "")
}

// Deduplicate removes duplicates case-insensitively while preserving
// first-seen order. The original casing of the first occurrence is kept.
func Deduplicate(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if !seen[key] {
			seen[key] = true
			result = append(result, item)
		}
	}
	return result
}

// DocID derives a stable document ID from the source filename stem and a
// content hash. Same path and content always produce the same ID.
func DocID(sourcePath, content string) string {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	sum := md5.Sum([]byte(content))
	return stem + "_" + hex.EncodeToString(sum[:])[:8]
}

// ContentHash returns the md5 hex digest of s. Used for code block
// deduplication across overlapping extraction passes.
func ContentHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
