package artifact

import (
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation and spaces", "A Cat, on  the Moon!", "a_cat_on_the_moon"},
		{"accents folded", "Café Déjà Vu", "cafe_deja_vu"},
		{"mixed whitespace", "a\t\n b", "a_b"},
		{"queue key", "queue_result abc-123", "queue_result_abc123"},
		{"leading space kept as underscore", " x", "_x"},
		{"non latin dropped", "日本 cat", "_cat"},
		{"empty", "", ""},
		{"long input truncated", strings.Repeat("abcde ", 20), strings.Repeat("abcde_", 9)[:50]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	samples := []string{
		"A Cat, on  the Moon!",
		"already_clean_stem",
		"Ünïcödé   spaces\tand\nlines",
		strings.Repeat("long prompt text ", 10),
		"İstanbul ǅ ﬁ",
	}
	for _, s := range samples {
		once := Sanitize(s)
		assert.Equal(t, once, Sanitize(once), "input %q", s)
		assert.LessOrEqual(t, len(once), maxStemLength)
	}

	prop := func(s string) bool {
		once := Sanitize(s)
		return Sanitize(once) == once
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 89_000_000, time.UTC)
	seed := int64(7)

	assert.Equal(t,
		"minimax_a_cat_on_the_moon_7_2_2025-03-04T05-06-07-089Z.png",
		Filename("A Cat, on  the Moon!", &seed, 2, at))

	assert.Equal(t,
		"minimax_queue_result_abc123_1_2025-03-04T05-06-07-089Z.png",
		Filename("queue_result abc123", nil, 1, at))
}

func TestFilenameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	at := time.Date(2025, 3, 4, 14, 0, 0, 0, loc)

	name := Filename("x", nil, 1, at)

	assert.Equal(t, "minimax_x_1_2025-03-04T05-00-00-000Z.png", name)
	assert.NotContains(t, name, ":")
}
