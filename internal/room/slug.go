package room

import (
	"crypto/rand"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugFallback   = "room"
	slugSuffixLen  = 4
	slugSuffixChar = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// GenerateSlug derives a room slug from its display name plus a random
// suffix, e.g. "Sprint Café" -> "sprint-cafe-k3x9". Collisions are not
// checked.
func GenerateSlug(name string) string {
	return SlugBase(name) + "-" + randomSuffix(slugSuffixLen)
}

// SlugBase is the normalized, suffix-less part of a slug.
func SlugBase(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}
	base := slugSeparators.ReplaceAllString(strings.ToLower(stripped), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return slugFallback
	}
	return base
}

// ValidSlug reports whether s is safe to use as a storage key.
func ValidSlug(s string) bool { return validSlug.MatchString(s) }

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = slugSuffixChar[int(buf[i])%len(slugSuffixChar)]
	}
	return string(out)
}
