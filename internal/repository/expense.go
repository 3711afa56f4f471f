package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/models"
)

// Display name for expenses whose category row is gone.
const uncategorizedName = "未分類"

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository creates the expense repository.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

type CreateExpenseParams struct {
	UserID     uuid.UUID
	CategoryID uuid.NullUUID
	Amount     decimal.Decimal
	Currency   string
	SpentAt    time.Time
	Note       *string
	Source     models.ExpenseSource
	RawText    *string
}

// Create inserts one expense row.
func (r *ExpenseRepository) Create(ctx context.Context, params CreateExpenseParams) (models.Expense, error) {
	var expense models.Expense

	err := r.db.QueryRow(ctx,
		`INSERT INTO expenses (user_id, category_id, amount, currency, spent_at, note, source, raw_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, user_id, category_id, amount, currency, spent_at, note, source, raw_text, created_at`,
		params.UserID, params.CategoryID, params.Amount, params.Currency,
		params.SpentAt, params.Note, params.Source, params.RawText,
	).Scan(&expense.ID, &expense.UserID, &expense.CategoryID, &expense.Amount, &expense.Currency,
		&expense.SpentAt, &expense.Note, &expense.Source, &expense.RawText, &expense.CreatedAt)
	if err != nil {
		return expense, err
	}

	return expense, nil
}

// ListForPeriod returns the user's live expenses with spent_at in
// [start, end), newest first. Soft-deleted rows are excluded here so the
// aggregation code downstream never has to re-filter.
func (r *ExpenseRepository) ListForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.user_id, e.category_id, COALESCE(c.name, $4), e.amount, e.currency,
		        e.spent_at, e.note, e.source, e.raw_text, e.created_at
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = $1
		   AND e.deleted_at IS NULL
		   AND e.spent_at >= $2
		   AND e.spent_at < $3
		 ORDER BY e.spent_at DESC, e.created_at DESC`,
		userID, start, end, uncategorizedName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Currency,
			&e.SpentAt, &e.Note, &e.Source, &e.RawText, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Update changes the amount and/or note of a live expense. A nil amount
// leaves it unchanged; the note is only touched when noteSet is true, with a
// nil note clearing it. The category name rides along for the response.
func (r *ExpenseRepository) Update(ctx context.Context, userID, expenseID uuid.UUID, amount *decimal.Decimal, noteSet bool, note *string) (models.Expense, error) {
	var e models.Expense

	err := r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET amount = COALESCE($3, amount),
		     note = CASE WHEN $4 THEN $5 ELSE note END
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING id, user_id, category_id,
		           COALESCE((SELECT c.name FROM categories c WHERE c.id = expenses.category_id), $6),
		           amount, currency, spent_at, note, source, raw_text, created_at`,
		expenseID, userID, amount, noteSet, note, uncategorizedName,
	).Scan(&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.Currency,
		&e.SpentAt, &e.Note, &e.Source, &e.RawText, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, ErrNotFound
		}
		return e, err
	}

	return e, nil
}

// SoftDelete marks one of the user's expenses as deleted. The row stays in
// place; every read filters on deleted_at.
func (r *ExpenseRepository) SoftDelete(ctx context.Context, userID, expenseID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE expenses
		 SET deleted_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		expenseID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
