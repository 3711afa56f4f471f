package stats

import "github.com/shopspring/decimal"

// BudgetStatus compares a user's monthly budget against what was spent.
// Remaining is nil when no budget is set and may be negative otherwise;
// callers display the absolute value labeled as an overage.
type BudgetStatus struct {
	Budget       *decimal.Decimal
	Remaining    *decimal.Decimal
	IsOverBudget bool
}

// EvaluateBudget derives the budget status for a period. Without a budget
// the status is empty and never over; with one, remaining = budget - spent
// with no clamping.
func EvaluateBudget(budget decimal.NullDecimal, spent decimal.Decimal) BudgetStatus {
	if !budget.Valid {
		return BudgetStatus{}
	}

	b := budget.Decimal
	remaining := b.Sub(spent)

	return BudgetStatus{
		Budget:       &b,
		Remaining:    &remaining,
		IsOverBudget: remaining.IsNegative(),
	}
}
