package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/pricing"
	"github.com/autocare/autocare-api/pkg/database"
)

const repairColumns = `id, repair_type, description, start_date, end_date, status, price, image_before, image_after, internal_notes, next_maintenance_date, vehicle_id, mechanic_id, created_at`

var repairItemColumns = []string{
	"r.id", "r.repair_type", "r.description", "r.start_date", "r.end_date", "r.status", "r.price",
	"r.image_before", "r.image_after", "r.internal_notes", "r.next_maintenance_date", "r.vehicle_id",
	"r.mechanic_id", "r.created_at",
	"v.model AS vehicle_model", "v.plate AS vehicle_plate", "u.full_name AS client_name", "v.owner_id",
	"EXISTS (SELECT 1 FROM services s WHERE s.repair_id = r.id) AS has_services",
}

// Statuses that end the maintenance reminder cycle.
var closedRepairStatuses = []string{models.RepairStatusFinished, models.RepairStatusRejected, models.RepairStatusApproved}

// RepairRepository manages repairs and their quote history.
type RepairRepository struct {
	db *sqlx.DB
}

// NewRepairRepository constructs the repository.
func NewRepairRepository(db *sqlx.DB) *RepairRepository {
	return &RepairRepository{db: db}
}

// Create inserts a repair. Price starts empty until services are attached.
func (r *RepairRepository) Create(ctx context.Context, repair *models.Repair) error {
	const query = `INSERT INTO repairs (repair_type, description, start_date, end_date, status, image_before, image_after, internal_notes, next_maintenance_date, vehicle_id, mechanic_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		repair.RepairType, repair.Description, repair.StartDate, repair.EndDate, repair.Status,
		repair.ImageBefore, repair.ImageAfter, repair.InternalNotes, repair.NextMaintenanceDate,
		repair.VehicleID, repair.MechanicID,
	)
	if err := row.Scan(&repair.ID, &repair.CreatedAt); err != nil {
		return wrapWrite("create repair", err)
	}
	return nil
}

// FindByID returns a bare repair row.
func (r *RepairRepository) FindByID(ctx context.Context, id int64) (*models.Repair, error) {
	query := `SELECT ` + repairColumns + ` FROM repairs WHERE id = $1`
	var repair models.Repair
	if err := r.db.GetContext(ctx, &repair, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find repair: %w", err)
	}
	return &repair, nil
}

func (r *RepairRepository) itemQuery() sq.SelectBuilder {
	return psql.Select(repairItemColumns...).
		From("repairs r").
		Join("vehicles v ON v.id = r.vehicle_id").
		Join("users u ON u.id = v.owner_id")
}

// FindItem returns a repair with its vehicle and owner columns.
func (r *RepairRepository) FindItem(ctx context.Context, id int64) (*models.RepairListItem, error) {
	query, args, err := r.itemQuery().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build repair query: %w", err)
	}
	var item models.RepairListItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find repair item: %w", err)
	}
	return &item, nil
}

// List returns repairs newest first, optionally limited to an owner or a vehicle.
func (r *RepairRepository) List(ctx context.Context, filter models.RepairFilter) ([]models.RepairListItem, error) {
	builder := r.itemQuery()
	if filter.OwnerID != nil {
		builder = builder.Where(sq.Eq{"v.owner_id": *filter.OwnerID})
	}
	if filter.VehicleID != nil {
		builder = builder.Where(sq.Eq{"r.vehicle_id": *filter.VehicleID})
	}
	query, args, err := builder.OrderBy("r.start_date DESC", "r.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build repair list: %w", err)
	}
	items := []models.RepairListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list repairs: %w", err)
	}
	return items, nil
}

// UpcomingMaintenance lists an owner's open repairs due for maintenance between from and to.
func (r *RepairRepository) UpcomingMaintenance(ctx context.Context, ownerID int64, from, to time.Time) ([]models.RepairListItem, error) {
	query, args, err := r.itemQuery().
		Where(sq.Eq{"v.owner_id": ownerID}).
		Where(sq.Expr("r.next_maintenance_date BETWEEN ? AND ?", from, to)).
		Where(sq.NotEq{"r.status": closedRepairStatuses}).
		OrderBy("r.next_maintenance_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build maintenance query: %w", err)
	}
	items := []models.RepairListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list upcoming maintenance: %w", err)
	}
	return items, nil
}

// Update writes the editable repair fields. Price and mechanic are untouched.
func (r *RepairRepository) Update(ctx context.Context, repair *models.Repair) error {
	const query = `UPDATE repairs SET repair_type = $2, description = $3, start_date = $4, end_date = $5, status = $6, image_before = $7, image_after = $8, internal_notes = $9, next_maintenance_date = $10, vehicle_id = $11 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, repair.ID,
		repair.RepairType, repair.Description, repair.StartDate, repair.EndDate, repair.Status,
		repair.ImageBefore, repair.ImageAfter, repair.InternalNotes, repair.NextMaintenanceDate, repair.VehicleID,
	)
	if err != nil {
		return wrapWrite("update repair", err)
	}
	return expectAffected(res, "update repair")
}

// Delete removes a repair with its services and invoice.
func (r *RepairRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repairs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete repair: %w", err)
	}
	return expectAffected(res, "delete repair")
}

// RecordDecision sets the repair status and appends the decision to the quote history.
func (r *RepairRepository) RecordDecision(ctx context.Context, repairID, clientID int64, decision, status string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE repairs SET status = $2 WHERE id = $1`, repairID, status)
		if err != nil {
			return fmt.Errorf("update repair status: %w", err)
		}
		if err := expectAffected(res, "update repair status"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO quote_approvals (repair_id, client_id, decision, decided_at) VALUES ($1, $2, $3, NOW())`, repairID, clientID, decision); err != nil {
			return fmt.Errorf("insert quote approval: %w", err)
		}
		return nil
	})
}

// RecomputePrice writes the sum of the repair's service prices, or NULL when it has none.
func (r *RepairRepository) RecomputePrice(ctx context.Context, repairID int64) (*float64, error) {
	var total *float64
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.GetContext(ctx, &id, `SELECT id FROM repairs WHERE id = $1 FOR UPDATE`, repairID); err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("lock repair: %w", err)
		}

		var prices []float64
		if err := tx.SelectContext(ctx, &prices, `SELECT price FROM services WHERE repair_id = $1`, repairID); err != nil {
			return fmt.Errorf("load service prices: %w", err)
		}
		total = pricing.RepairTotal(prices)

		if _, err := tx.ExecContext(ctx, `UPDATE repairs SET price = $2 WHERE id = $1`, repairID, total); err != nil {
			return fmt.Errorf("update repair price: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}
