package quicktext

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// TestParseAmountOnly checks that a bare number parses with empty category
// and note.
func TestParseAmountOnly(t *testing.T) {
	draft, err := Parse("100")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !draft.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected amount 100, got %s", draft.Amount)
	}
	if draft.CategoryToken != "" {
		t.Fatalf("expected empty category, got %q", draft.CategoryToken)
	}
	if draft.Note != "" {
		t.Fatalf("expected empty note, got %q", draft.Note)
	}
}

// TestParseCategoryBeforeAmount checks the "午餐 120" word order.
func TestParseCategoryBeforeAmount(t *testing.T) {
	draft, err := Parse("午餐 120")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !draft.Amount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected amount 120, got %s", draft.Amount)
	}
	if draft.CategoryToken != "午餐" {
		t.Fatalf("expected category 午餐, got %q", draft.CategoryToken)
	}
	if draft.Note != "" {
		t.Fatalf("expected empty note, got %q", draft.Note)
	}
}

// TestParseAmountFirstWithNote checks the "120 午餐 麥當勞" word order.
func TestParseAmountFirstWithNote(t *testing.T) {
	draft, err := Parse("120 午餐 麥當勞")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !draft.Amount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected amount 120, got %s", draft.Amount)
	}
	if draft.CategoryToken != "午餐" {
		t.Fatalf("expected category 午餐, got %q", draft.CategoryToken)
	}
	if draft.Note != "麥當勞" {
		t.Fatalf("expected note 麥當勞, got %q", draft.Note)
	}
}

// TestParseFirstNumberWins checks that a later number stays in the note.
func TestParseFirstNumberWins(t *testing.T) {
	draft, err := Parse("120 午餐 套餐2份")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !draft.Amount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected amount 120, got %s", draft.Amount)
	}
	if draft.Note != "套餐2份" {
		t.Fatalf("expected note to keep its digits, got %q", draft.Note)
	}
}

// TestParseFullWidthSpace checks tokenization across U+3000.
func TestParseFullWidthSpace(t *testing.T) {
	draft, err := Parse("120　午餐　麥當勞")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if draft.CategoryToken != "午餐" {
		t.Fatalf("expected category 午餐, got %q", draft.CategoryToken)
	}
	if draft.Note != "麥當勞" {
		t.Fatalf("expected note 麥當勞, got %q", draft.Note)
	}
}

// TestParseDecimalAmount checks fractional amounts.
func TestParseDecimalAmount(t *testing.T) {
	draft, err := Parse("coffee 3.5")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := decimal.NewFromFloat(3.5)
	if !draft.Amount.Equal(want) {
		t.Fatalf("expected amount 3.5, got %s", draft.Amount)
	}
	if draft.CategoryToken != "coffee" {
		t.Fatalf("expected category coffee, got %q", draft.CategoryToken)
	}
}

// TestParseNoAmount checks inputs without any digits.
func TestParseNoAmount(t *testing.T) {
	for _, input := range []string{"", "   ", "午餐", "lunch at noon"} {
		if _, err := Parse(input); !errors.Is(err, ErrNoAmount) {
			t.Fatalf("Parse(%q): expected ErrNoAmount, got %v", input, err)
		}
	}
}

// TestParseInvalidAmount checks rejection of non-positive amounts.
func TestParseInvalidAmount(t *testing.T) {
	for _, input := range []string{"-5 coffee", "0", "0.0 午餐"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Parse(%q): expected ErrInvalidAmount, got %v", input, err)
		}
	}
}

// TestParseKeepsRawText checks that the trimmed original line is preserved.
func TestParseKeepsRawText(t *testing.T) {
	draft, err := Parse("  午餐 120  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if draft.RawText != "午餐 120" {
		t.Fatalf("expected trimmed raw text, got %q", draft.RawText)
	}
}
