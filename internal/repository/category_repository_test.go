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

func TestCategoryListWithCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(sp.id) FILTER (WHERE sp.active) AS active_parts FROM spare_part_categories c LEFT JOIN spare_parts sp")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active_parts"}).
			AddRow(int64(1), "Filtros", 2).
			AddRow(int64(2), "Frenos", 0))

	categories, err := repo.ListWithCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 2, categories[0].ActiveParts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spare_part_categories (name) VALUES ($1) RETURNING id")).
		WithArgs("Frenos").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "spare_part_categories_name_key"})

	err := repo.Create(context.Background(), &models.Category{Name: "Frenos"})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE spare_part_categories SET name = $2 WHERE id = $1")).
		WithArgs(int64(4), "Luces").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Category{ID: 4, Name: "Luces"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
