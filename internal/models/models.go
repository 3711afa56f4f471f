package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseSource string

const (
	ExpenseSourceQuickText ExpenseSource = "quick_text"
	ExpenseSourceDashboard ExpenseSource = "dashboard"
)

type User struct {
	ID                  uuid.UUID           `json:"id"`
	LineUserID          string              `json:"line_user_id"`
	DisplayName         *string             `json:"display_name,omitempty"`
	Currency            string              `json:"currency"`
	MonthlyBudgetAmount decimal.NullDecimal `json:"monthly_budget_amount"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type Expense struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	CategoryID   uuid.NullUUID   `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	SpentAt      time.Time       `json:"spent_at"`
	Note         *string         `json:"note,omitempty"`
	Source       ExpenseSource   `json:"source"`
	RawText      *string         `json:"raw_text,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}
