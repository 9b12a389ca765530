// Package naming derives unique, filesystem-safe asset names:
// <slug>-<unix millis>-<sha256 prefix><ext>. Two uploads collide only when
// content hash, millisecond and sanitized base name all coincide.
package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	hashLen    = 12
	maxSlugLen = 40
)

// Generate builds the storage name for content under its original filename.
// The extension is taken from originalName, so callers that re-encode must
// pass a name already carrying the output format's extension.
func Generate(originalName string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])[:hashLen]

	return fmt.Sprintf("%s-%d-%s%s", slugify(base), time.Now().UnixMilli(), hash, ext)
}

// slugify lowercases the base name and collapses every non-alphanumeric run
// into a single hyphen, capped at maxSlugLen.
func slugify(base string) string {
	var b strings.Builder
	lastHyphen := false

	for _, r := range strings.ToLower(base) {
		if b.Len() >= maxSlugLen {
			break
		}

		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}

		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "file"
	}

	return slug
}
