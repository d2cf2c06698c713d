package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autocare/autocare-api/internal/models"
)

func TestInvoiceCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	issued := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices (invoice_number, issued_on, subtotal, total, status, repair_id, user_id)")).
		WithArgs("FAC-2025-0042", issued, 102.5, 102.5, models.InvoiceStatusPending, int64(3), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	inv := &models.Invoice{InvoiceNumber: "FAC-2025-0042", IssuedOn: issued, Subtotal: 102.5, Total: 102.5, Status: models.InvoiceStatusPending, RepairID: 3, UserID: 2}
	require.NoError(t, repo.Create(context.Background(), inv))
	assert.Equal(t, int64(1), inv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceCreateReportsRepairConstraint(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: InvoiceRepairConstraint})

	err := repo.Create(context.Background(), &models.Invoice{InvoiceNumber: "FAC-2025-0001", RepairID: 3, UserID: 2})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, InvoiceRepairConstraint, ViolatedConstraint(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceFindByRepairMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE repair_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByRepair(context.Background(), 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceListForClient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	user := int64(2)
	mock.ExpectQuery(regexp.QuoteMeta("CONCAT(v.make, ' ', v.model, ' - ', v.plate) AS vehicle FROM invoices i") + ".*" + regexp.QuoteMeta("WHERE i.user_id = $1 ORDER BY i.issued_on DESC, i.id DESC")).
		WithArgs(user).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_number", "total", "status", "user_id", "client_name", "vehicle"}).
			AddRow(int64(1), "FAC-2025-0042", 102.5, "Pendiente", user, "Ana", "Toyota Corolla - P123ABC"))

	items, err := repo.List(context.Background(), models.InvoiceFilter{UserID: &user})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Toyota Corolla - P123ABC", items[0].Vehicle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
