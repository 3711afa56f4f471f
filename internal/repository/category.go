package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maialona/line-budget-bot/internal/models"
)

type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository creates the category repository.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate upserts a user-scoped category by name. Names are
// case-sensitive and unique per user; the upsert keeps the call a single
// atomic statement so concurrent quick entries cannot race a duplicate.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (models.Category, error) {
	return r.upsert(ctx, userID, strings.TrimSpace(name), false)
}

// GetOrCreateDefault upserts the fallback category used when a quick entry
// carries no category token.
func (r *CategoryRepository) GetOrCreateDefault(ctx context.Context, userID uuid.UUID, name string) (models.Category, error) {
	return r.upsert(ctx, userID, strings.TrimSpace(name), true)
}

func (r *CategoryRepository) upsert(ctx context.Context, userID uuid.UUID, name string, isDefault bool) (models.Category, error) {
	var category models.Category

	// DO UPDATE instead of DO NOTHING so RETURNING always yields the row.
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, is_default)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, user_id, name, is_default, created_at`,
		userID, name, isDefault,
	).Scan(&category.ID, &category.UserID, &category.Name, &category.IsDefault, &category.CreatedAt)
	if err != nil {
		return category, err
	}

	return category, nil
}
