package artifact

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// FilenamePrefix tags every file written by this server with the model family.
	FilenamePrefix = "minimax_"

	// maxStemLength bounds the sanitized part of a filename.
	maxStemLength = 50

	tsLayoutISO = "2006-01-02T15:04:05.000Z07:00"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9_\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	tsReplacer = strings.NewReplacer(":", "-", ".", "-")
)

// Sanitize turns free text into a filename stem: lower case, accents folded
// to their base letter, anything outside [a-z0-9_] and whitespace dropped,
// whitespace runs collapsed to a single underscore, and the result cut to 50
// bytes. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	// Casers and transform chains carry state; build them per call.
	s = cases.Lower(language.Und).String(s)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	if len(s) > maxStemLength {
		s = s[:maxStemLength]
	}
	return s
}

// Filename builds the local name for the image at 1-based position ordinal.
//
//	minimax_<stem>[_<seed>]_<ordinal>_<timestamp>.png
//
// The timestamp is UTC ISO-8601 with milliseconds, with ':' and '.' replaced
// by '-'.
func Filename(namingSeed string, seed *int64, ordinal int, at time.Time) string {
	var b strings.Builder
	b.WriteString(FilenamePrefix)
	b.WriteString(Sanitize(namingSeed))
	if seed != nil {
		fmt.Fprintf(&b, "_%d", *seed)
	}
	fmt.Fprintf(&b, "_%d_%s.png", ordinal, tsReplacer.Replace(at.UTC().Format(tsLayoutISO)))
	return b.String()
}
