package service

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestGenerateReceiptNumberFormat(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC).Add(time.Millisecond)
	got := GenerateReceiptNumber("wr", now)
	want := fmt.Sprintf("WR-11F-20240101-%04d", now.UnixMilli()%10000)
	if got != want {
		t.Fatalf("unexpected receipt number: got=%s want=%s", got, want)
	}
	if GenerateReceiptNumber("wr", now) != got {
		t.Fatalf("generator should be deterministic for a fixed clock")
	}
}

func TestGenerateReceiptNumberDistinctPerMillisecond(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 30, 15, 0, time.UTC)
	seen := make(map[string]struct{})
	for ms := 0; ms < 1000; ms++ {
		number := GenerateReceiptNumber("PR", base.Add(time.Duration(ms)*time.Millisecond))
		if _, ok := seen[number]; ok {
			t.Fatalf("duplicate number within the same second: %s", number)
		}
		seen[number] = struct{}{}
	}
}

func TestGenerateReceiptNumberZeroPadsFragment(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_007).UTC()
	got := GenerateReceiptNumber("SS", now)
	if !strings.HasSuffix(got, "-0007") {
		t.Fatalf("expected zero padded fragment, got %s", got)
	}
}

func TestValidReceiptNumber(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"PR-11F-20250301-0042", true},
		{"custom.number_1", true},
		{"", false},
		{"-leading-dash", false},
		{"../escape", false},
		{"with space", false},
		{"slash/inside", false},
		{strings.Repeat("a", 101), false},
	}
	for _, tc := range cases {
		if got := ValidReceiptNumber(tc.value); got != tc.want {
			t.Fatalf("ValidReceiptNumber(%q)=%v want %v", tc.value, got, tc.want)
		}
	}
}
