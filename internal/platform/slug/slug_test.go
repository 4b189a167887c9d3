package slug_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"readtrack/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"  Go Concurrency  ":     "go-concurrency",
		"Distributed -- Systems": "distributed-systems",
		"Книги и статьи":         "книги-и-статьи",
		"!!!":                    "untitled",
		"":                       "untitled",
		"chapter 12.":            "chapter-12",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMakeLimitsLength(t *testing.T) {
	t.Parallel()
	got := slug.Make(strings.Repeat("ab ", 40))
	if n := utf8.RuneCountInString(got); n > 48 {
		t.Fatalf("slug too long: %d runes", n)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug must not end with a dash: %q", got)
	}
}
