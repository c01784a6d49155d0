package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Stone", "stone"},
		{"trims whitespace", "  stone \t", "stone"},
		{"strips diacritics", "stān", "stan"},
		{"strips stacked marks", "café résumé", "cafe resume"},
		{"old norse", "steinn", "steinn"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"non latin passes through", "λίθος", "λιθος"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForm(tt.in))
		})
	}
}

func TestNormalizeFormIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Stān", "café", "  Steinn ", "λίθος"} {
		once := NormalizeForm(in)
		assert.Equal(t, once, NormalizeForm(once), "input %q", in)
	}
}

func TestStripDiacritics(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hus", StripDiacritics("hūs"))
	assert.Equal(t, "uber", StripDiacritics("über"))
	// Case is preserved; only combining marks go.
	assert.Equal(t, "Stan", StripDiacritics("Stān"))
}

func TestDeriveLanguageCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		lang string
		want string
	}{
		{"code wins", "ang", "Old English", "ang"},
		{"code lowercased", "ANG", "Old English", "ang"},
		{"fallback to name prefix", "", "Latin", "lat"},
		{"fallback lowercased", "", "French", "fre"},
		{"short name kept whole", "", "Ga", "ga"},
		{"both empty", "", "", ""},
		{"code trimmed", " non ", "", "non"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveLanguageCode(tt.code, tt.lang))
		})
	}
}
