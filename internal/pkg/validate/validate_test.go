package validate

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWithinLenCountsBytes(t *testing.T) {
	if !WithinLen(strings.Repeat("a", MaxContentLen), MaxContentLen) {
		t.Fatalf("exact-length content must pass")
	}
	if WithinLen(strings.Repeat("a", MaxContentLen+1), MaxContentLen) {
		t.Fatalf("over-length content must fail")
	}
}

func TestTruncateLeavesShortValuesAlone(t *testing.T) {
	if got := Truncate("hello", 100); got != "hello" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	value := strings.Repeat("ж", 150)
	got := Truncate(value, 100)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid utf-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated value must carry an ellipsis: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != 100 {
		t.Fatalf("unexpected rune count: %d", n)
	}
}
