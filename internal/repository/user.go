package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/models"
)

const userColumns = `id, line_user_id, display_name, currency, monthly_budget_amount, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates the user repository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure returns the user bound to a LINE user id, creating it on first
// contact. A concurrent create from another webhook delivery is resolved by
// re-reading after a unique violation.
func (r *UserRepository) Ensure(ctx context.Context, lineUserID, currency string) (models.User, error) {
	user, err := r.GetByLineUserID(ctx, lineUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return user, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO users (line_user_id, currency)
		 VALUES ($1, $2)
		 RETURNING `+userColumns,
		lineUserID, currency,
	).Scan(&user.ID, &user.LineUserID, &user.DisplayName, &user.Currency, &user.MonthlyBudgetAmount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.GetByLineUserID(ctx, lineUserID)
		}
		return user, err
	}

	return user, nil
}

// GetByLineUserID returns the user owning a LINE user id.
func (r *UserRepository) GetByLineUserID(ctx context.Context, lineUserID string) (models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE line_user_id = $1`,
		lineUserID,
	).Scan(&user.ID, &user.LineUserID, &user.DisplayName, &user.Currency, &user.MonthlyBudgetAmount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	return user, nil
}

// GetByID returns the user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.LineUserID, &user.DisplayName, &user.Currency, &user.MonthlyBudgetAmount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	return user, nil
}

// SetDisplayNameIfEmpty backfills the display name from the LINE Login
// profile without overwriting a name the user already has.
func (r *UserRepository) SetDisplayNameIfEmpty(ctx context.Context, id uuid.UUID, displayName string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET display_name = $2, updated_at = now()
		 WHERE id = $1 AND display_name IS NULL`,
		id, displayName,
	)
	return err
}

// SetMonthlyBudget overwrites the user's monthly budget. The previous value
// is not kept. Amounts that are not strictly positive are rejected before
// any write.
func (r *UserRepository) SetMonthlyBudget(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (models.User, error) {
	var user models.User

	if amount.LessThanOrEqual(decimal.Zero) {
		return user, ErrInvalidBudget
	}

	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET monthly_budget_amount = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, amount,
	).Scan(&user.ID, &user.LineUserID, &user.DisplayName, &user.Currency, &user.MonthlyBudgetAmount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	return user, nil
}

// ClearMonthlyBudget removes the user's monthly budget.
func (r *UserRepository) ClearMonthlyBudget(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET monthly_budget_amount = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id,
	).Scan(&user.ID, &user.LineUserID, &user.DisplayName, &user.Currency, &user.MonthlyBudgetAmount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	return user, nil
}
