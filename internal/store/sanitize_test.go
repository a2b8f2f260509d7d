package store

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeNameValid(t *testing.T) {
	cases := map[string]string{
		"ishares":        "ishares",
		"First-Trust_1":  "first-trust_1",
		"  Vanguard  ":   "vanguard",
		"Goldman Sachs":  "goldman sachs",
		"ROUNDHILL":      "roundhill",
		"a1 b2-c3_d4":    "a1 b2-c3_d4",
		strings.Repeat("x", 100): strings.Repeat("x", 100),
	}

	for input, want := range cases {
		got, err := SanitizeName(input)
		if err != nil {
			t.Fatalf("SanitizeName(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeNameInvalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"../etc/passwd",
		"a/b",
		`a\b`,
		"..",
		"-leading",
		"_leading",
		" -still-leading",
		"dots.forbidden",
		"emoji🙂",
		strings.Repeat("x", 101),
	}

	for _, input := range cases {
		if _, err := SanitizeName(input); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("SanitizeName(%q) should fail with ErrInvalidName, got %v", input, err)
		}
	}
}
