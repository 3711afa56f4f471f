// Package quicktext turns a single free-form chat line into a structured
// expense draft. The heuristic is deliberately simple: the first number in
// the message is the amount, the first remaining token is the category and
// whatever is left becomes the note.
package quicktext

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoAmount      = errors.New("no amount found in text")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// A leading minus is captured so that "-5 coffee" is rejected as an invalid
// amount instead of being read as a positive 5.
var amountPattern = regexp.MustCompile(`-?[0-9]+(?:\.[0-9]+)?`)

// Draft is the parsed form of one quick-text message. It is ephemeral: the
// caller resolves a category for CategoryToken and persists an expense.
type Draft struct {
	Amount        decimal.Decimal
	CategoryToken string
	Note          string
	RawText       string
}

// Parse extracts an expense draft from one line of free text.
//
// The first numeric substring wins; later numbers (for example inside a
// note) are ignored. The matched substring is removed exactly once, the
// remainder is collapsed on Unicode whitespace (full-width space included)
// and split into tokens: first token is the category, the rest is the note.
func Parse(rawText string) (Draft, error) {
	text := strings.TrimSpace(rawText)

	loc := amountPattern.FindStringIndex(text)
	if loc == nil {
		return Draft{}, ErrNoAmount
	}

	amount, err := decimal.NewFromString(text[loc[0]:loc[1]])
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return Draft{}, ErrInvalidAmount
	}

	residual := text[:loc[0]] + " " + text[loc[1]:]
	tokens := strings.Fields(residual)

	draft := Draft{
		Amount:  amount,
		RawText: text,
	}

	if len(tokens) > 0 {
		draft.CategoryToken = tokens[0]
		draft.Note = strings.Join(tokens[1:], " ")
	}

	return draft, nil
}
