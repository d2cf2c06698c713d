package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
)

var sparePartColumns = []string{"sp.id", "sp.name", "sp.unit_price", "sp.category_id", "c.name AS category_name", "sp.description", "sp.active"}

// SparePartRepository manages the spare parts inventory.
type SparePartRepository struct {
	db *sqlx.DB
}

// NewSparePartRepository constructs the repository.
func NewSparePartRepository(db *sqlx.DB) *SparePartRepository {
	return &SparePartRepository{db: db}
}

func (r *SparePartRepository) selectParts() sq.SelectBuilder {
	return psql.Select(sparePartColumns...).
		From("spare_parts sp").
		Join("spare_part_categories c ON c.id = sp.category_id")
}

// List returns parts ordered by category then name.
func (r *SparePartRepository) List(ctx context.Context, filter models.SparePartFilter) ([]models.SparePart, error) {
	builder := r.selectParts()
	if filter.CategoryID != nil {
		builder = builder.Where(sq.Eq{"sp.category_id": *filter.CategoryID})
	}
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"sp.active": *filter.Active})
	}
	query, args, err := builder.OrderBy("c.name ASC", "sp.name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build spare part list: %w", err)
	}
	parts := []models.SparePart{}
	if err := r.db.SelectContext(ctx, &parts, query, args...); err != nil {
		return nil, fmt.Errorf("list spare parts: %w", err)
	}
	return parts, nil
}

// FindByID returns a part with its category name.
func (r *SparePartRepository) FindByID(ctx context.Context, id int64) (*models.SparePart, error) {
	query, args, err := r.selectParts().Where(sq.Eq{"sp.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build spare part query: %w", err)
	}
	var part models.SparePart
	if err := r.db.GetContext(ctx, &part, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find spare part: %w", err)
	}
	return &part, nil
}

// Create inserts a part.
func (r *SparePartRepository) Create(ctx context.Context, part *models.SparePart) error {
	query, args, err := psql.Insert("spare_parts").
		Columns("name", "unit_price", "category_id", "description", "active").
		Values(part.Name, part.UnitPrice, part.CategoryID, part.Description, part.Active).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build spare part insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&part.ID); err != nil {
		return wrapWrite("create spare part", err)
	}
	return nil
}

// Update applies the non-nil fields of the patch.
func (r *SparePartRepository) Update(ctx context.Context, id int64, patch models.SparePartPatch) error {
	set := map[string]interface{}{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.UnitPrice != nil {
		set["unit_price"] = *patch.UnitPrice
	}
	if patch.CategoryID != nil {
		set["category_id"] = *patch.CategoryID
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if len(set) == 0 {
		return fmt.Errorf("update spare part: no fields to update")
	}

	query, args, err := psql.Update("spare_parts").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build spare part update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapWrite("update spare part", err)
	}
	return expectAffected(res, "update spare part")
}

// Deactivate soft-deletes a part so historical services keep their rows.
func (r *SparePartRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE spare_parts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate spare part: %w", err)
	}
	return expectAffected(res, "deactivate spare part")
}

// ExistingIDs returns which of ids exist, optionally only among active parts.
func (r *SparePartRepository) ExistingIDs(ctx context.Context, ids []int64, activeOnly bool) (map[int64]struct{}, error) {
	found := make(map[int64]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	builder := psql.Select("id").From("spare_parts").Where(sq.Eq{"id": ids})
	if activeOnly {
		builder = builder.Where(sq.Eq{"active": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build spare part lookup: %w", err)
	}
	var rows []int64
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("lookup spare parts: %w", err)
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}
