package video

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// TruncationMarker is appended to text shortened by Sanitize.
const TruncationMarker = "..."

// forbiddenChars are stripped from text used in notebook names.
const forbiddenChars = `<>:"/\|?*`

// UnknownDate replaces upload dates that are missing or malformed.
const UnknownDate = "fecha-desconocida"

// Sanitize strips forbidden filename characters from text and shortens it to at
// most max runes, cutting at the last word boundary and appending
// TruncationMarker. The marker counts toward max, so re-applying Sanitize with
// the same max returns its input unchanged.
func Sanitize(text string, max int) string {
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) {
			return -1
		}
		return r
	}, text)
	text = strings.TrimSpace(text)

	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	markerLen := utf8.RuneCountInString(TruncationMarker)
	if max <= markerLen {
		return strings.TrimSpace(string(runes[:max]))
	}

	cut := string(runes[:max-markerLen])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + TruncationMarker
}

// FormatUploadDate turns an 8-digit YYYYMMDD date into YYYY-MM-DD.
// Anything else yields UnknownDate.
func FormatUploadDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != 8 {
		return UnknownDate
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return UnknownDate
	}
	return t.Format("2006-01-02")
}
