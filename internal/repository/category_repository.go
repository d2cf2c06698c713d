package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
)

// CategoryRepository manages spare part categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListWithCounts returns every category with its number of active parts.
func (r *CategoryRepository) ListWithCounts(ctx context.Context) ([]models.CategorySummary, error) {
	const query = `SELECT c.id, c.name, COUNT(sp.id) FILTER (WHERE sp.active) AS active_parts
FROM spare_part_categories c
LEFT JOIN spare_parts sp ON sp.category_id = c.id
GROUP BY c.id, c.name
ORDER BY c.name ASC`
	categories := []models.CategorySummary{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByID returns a category.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, `SELECT id, name FROM spare_part_categories WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// Create inserts a category. A taken name yields ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.QueryRowxContext(ctx, `INSERT INTO spare_part_categories (name) VALUES ($1) RETURNING id`, category.Name).Scan(&category.ID); err != nil {
		return wrapWrite("create category", err)
	}
	return nil
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE spare_part_categories SET name = $2 WHERE id = $1`, category.ID, category.Name)
	if err != nil {
		return wrapWrite("update category", err)
	}
	return expectAffected(res, "update category")
}
