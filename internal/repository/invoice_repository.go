package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
)

// InvoiceRepairConstraint backs the one-invoice-per-repair rule.
const InvoiceRepairConstraint = "invoices_repair_id_key"

const invoiceColumns = `id, invoice_number, issued_on, subtotal, total, status, repair_id, user_id, created_at`

// InvoiceRepository manages issued invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts an invoice. Unique violations surface as ErrDuplicate with the constraint name.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	const query = `INSERT INTO invoices (invoice_number, issued_on, subtotal, total, status, repair_id, user_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, inv.InvoiceNumber, inv.IssuedOn, inv.Subtotal, inv.Total, inv.Status, inv.RepairID, inv.UserID)
	if err := row.Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return wrapWrite("create invoice", err)
	}
	return nil
}

// FindByID returns an invoice.
func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*models.Invoice, error) {
	return r.findOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// FindByRepair returns the invoice issued for a repair.
func (r *InvoiceRepository) FindByRepair(ctx context.Context, repairID int64) (*models.Invoice, error) {
	return r.findOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE repair_id = $1`, repairID)
}

func (r *InvoiceRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.GetContext(ctx, &inv, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return &inv, nil
}

// List returns invoices newest first with client and vehicle labels.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceListItem, error) {
	builder := psql.
		Select("i.id", "i.invoice_number", "i.issued_on", "i.subtotal", "i.total", "i.status", "i.repair_id", "i.user_id", "i.created_at",
			"u.full_name AS client_name", "CONCAT(v.make, ' ', v.model, ' - ', v.plate) AS vehicle").
		From("invoices i").
		Join("users u ON u.id = i.user_id").
		Join("repairs r ON r.id = i.repair_id").
		Join("vehicles v ON v.id = r.vehicle_id")
	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"i.user_id": *filter.UserID})
	}
	query, args, err := builder.OrderBy("i.issued_on DESC", "i.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice list: %w", err)
	}
	items := []models.InvoiceListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return items, nil
}
