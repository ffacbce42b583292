package repository

import (
	"strings"
	"testing"
)

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"receipt_number", " ", "qr_code"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, `receipt_number LIKE ? ESCAPE '\'`) {
		t.Fatalf("condition should contain receipt_number LIKE, got %s", condition)
	}
	if !strings.Contains(condition, " OR qr_code LIKE ?") {
		t.Fatalf("condition should contain qr_code LIKE, got %s", condition)
	}
}

func TestBuildLikeConditionPostgresUsesILike(t *testing.T) {
	condition, _ := buildLikeConditionByDialect("postgres", []string{"receipt_number"})
	if !strings.HasPrefix(condition, "receipt_number ILIKE ?") {
		t.Fatalf("postgres should use ILIKE, got %s", condition)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"PR-11F-20250101-0001.svg": `PR-11F-20250101-0001.svg`,
		"a_b%c":                    `a\_b\%c`,
		`x\y`:                      `x\\y`,
	}
	for input, want := range cases {
		if got := escapeLike(input); got != want {
			t.Fatalf("escapeLike(%q) want %q got %q", input, want, got)
		}
	}
	if got := likeSuffix("/a_b.svg"); got != `%/a\_b.svg` {
		t.Fatalf("unexpected suffix pattern: %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%PR%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%PR%" {
			t.Fatalf("args[%d] want %%PR%% got %v", idx, arg)
		}
	}
}
