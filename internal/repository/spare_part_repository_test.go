package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autocare/autocare-api/internal/models"
)

var partRowColumns = []string{"id", "name", "unit_price", "category_id", "category_name", "description", "active"}

func TestSparePartListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	category := int64(2)
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM spare_parts sp JOIN spare_part_categories c ON c.id = sp.category_id WHERE sp.category_id = $1 AND sp.active = $2 ORDER BY c.name ASC, sp.name ASC")).
		WithArgs(category, active).
		WillReturnRows(sqlmock.NewRows(partRowColumns).AddRow(int64(3), "Pastillas", 35.0, category, "Frenos", nil, true))

	parts, err := repo.List(context.Background(), models.SparePartFilter{CategoryID: &category, Active: &active})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Frenos", parts[0].CategoryName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSparePartCreateUnknownCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spare_parts (name,unit_price,category_id,description,active) VALUES ($1,$2,$3,$4,$5) RETURNING id")).
		WithArgs("Filtro", 12.5, int64(77), nil, true).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "spare_parts_category_id_fkey"})

	err := repo.Create(context.Background(), &models.SparePart{Name: "Filtro", UnitPrice: 12.5, CategoryID: 77, Active: true})
	assert.True(t, errors.Is(err, ErrForeignKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSparePartPartialUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	name := "Filtro premium"
	price := 20.0
	mock.ExpectExec(regexp.QuoteMeta("UPDATE spare_parts SET name = $1, unit_price = $2 WHERE id = $3")).
		WithArgs(name, price, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), 5, models.SparePartPatch{Name: &name, UnitPrice: &price}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSparePartUpdateRejectsEmptyPatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	assert.Error(t, repo.Update(context.Background(), 5, models.SparePartPatch{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSparePartDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE spare_parts SET active = FALSE WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Deactivate(context.Background(), 5), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSparePartExistingIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSparePartRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM spare_parts WHERE id IN ($1,$2) AND active = $3")).
		WithArgs(int64(1), int64(9), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	found, err := repo.ExistingIDs(context.Background(), []int64{1, 9}, true)
	require.NoError(t, err)
	assert.Contains(t, found, int64(1))
	assert.NotContains(t, found, int64(9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
