package main

import (
	"testing"

	"github.com/verte-zerg/combodash/internal/model"
)

func TestResolvePlayCategory(t *testing.T) {
	cases := []struct {
		name    string
		mode    model.Mode
		arg     string
		want    model.Category
		wantErr bool
	}{
		{"category-challenge requires a category", model.ModeCategoryChallenge, "", "", true},
		{"category-challenge resolves", model.ModeCategoryChallenge, "quarters", model.CategoryQuarters, false},
		{"free-practice defaults to full catalog", model.ModeFreePractice, "", "", false},
		{"free-practice narrows the pool", model.ModeFreePractice, "halves", model.CategoryHalves, false},
		{"free-practice rejects unknown names", model.ModeFreePractice, "nope", "", true},
		{"other modes ignore the flag", model.ModeTimeAttack, "quarters", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolvePlayCategory(tc.mode, tc.arg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got category %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve category: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected category %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeInitials(t *testing.T) {
	cases := map[string]string{
		"abc":    "ABC",
		" zx ":   "ZXA",
		"":       "AAA",
		"wxyz":   "WXY",
		"a B c ": "A B",
	}
	for in, want := range cases {
		if got := normalizeInitials(in); got != want {
			t.Fatalf("normalizeInitials(%q) = %q, want %q", in, got, want)
		}
	}
}
