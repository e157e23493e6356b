package blacklist

import (
	"reflect"
	"testing"
)

func TestScanIsCaseInsensitive(t *testing.T) {
	matched := Scan("Hello WORLD", []string{"world"})
	if !reflect.DeepEqual(matched, []string{"world"}) {
		t.Fatalf("unexpected matches: %v", matched)
	}
}

func TestScanMatchesInsideLargerWords(t *testing.T) {
	matched := Scan("helloworld", []string{"hello"})
	if !reflect.DeepEqual(matched, []string{"hello"}) {
		t.Fatalf("substring match expected: %v", matched)
	}
}

func TestScanReturnsTermsInPolicyOrder(t *testing.T) {
	matched := Scan("bbb aaa", []string{"aaa", "bbb"})
	if !reflect.DeepEqual(matched, []string{"aaa", "bbb"}) {
		t.Fatalf("matches should follow policy order, got %v", matched)
	}
}

func TestScanReportsEachTermOnce(t *testing.T) {
	matched := Scan("spam spam spam", []string{"spam"})
	if len(matched) != 1 {
		t.Fatalf("repeated occurrences should report once: %v", matched)
	}
}

func TestScanEmptyInputsNeverFlag(t *testing.T) {
	if matched := Scan("", []string{"spam"}); matched != nil {
		t.Fatalf("empty text should not flag: %v", matched)
	}
	if matched := Scan("anything", nil); matched != nil {
		t.Fatalf("empty policy should not flag: %v", matched)
	}
}

func TestScanKeepsConfiguredCasing(t *testing.T) {
	matched := Scan("this is SPAM content", []string{"Spam"})
	if !reflect.DeepEqual(matched, []string{"Spam"}) {
		t.Fatalf("matches should carry the configured casing: %v", matched)
	}
}
