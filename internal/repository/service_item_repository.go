package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/pricing"
)

const serviceColumns = `id, name, description, start_date, end_date, labor_cost, price, repair_id`

// ServiceItemRepository manages services and their attached spare parts.
type ServiceItemRepository struct {
	db *sqlx.DB
}

// NewServiceItemRepository constructs the repository.
func NewServiceItemRepository(db *sqlx.DB) *ServiceItemRepository {
	return &ServiceItemRepository{db: db}
}

// Create inserts a service with its parts and prices it in one transaction.
func (r *ServiceItemRepository) Create(ctx context.Context, svc *models.ServiceItem, parts []models.ServicePart) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin service create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO services (name, description, start_date, end_date, labor_cost, price, repair_id) VALUES ($1, $2, $3, $4, $5, 0, $6) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insertQuery, svc.Name, svc.Description, svc.StartDate, svc.EndDate, svc.LaborCost, svc.RepairID).Scan(&svc.ID); err != nil {
		return wrapWrite("insert service", err)
	}
	if err = insertParts(ctx, tx, svc.ID, parts); err != nil {
		return err
	}
	if svc.Price, err = recomputeServicePrice(ctx, tx, svc.ID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit service create: %w", err)
	}
	return nil
}

// Update rewrites a service, replaces its parts wholesale and reprices it in one transaction.
func (r *ServiceItemRepository) Update(ctx context.Context, svc *models.ServiceItem, parts []models.ServicePart) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin service update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE services SET name = $2, description = $3, start_date = $4, end_date = $5, labor_cost = $6, repair_id = $7 WHERE id = $1`
	res, err := tx.ExecContext(ctx, updateQuery, svc.ID, svc.Name, svc.Description, svc.StartDate, svc.EndDate, svc.LaborCost, svc.RepairID)
	if err != nil {
		return wrapWrite("update service", err)
	}
	if err = expectAffected(res, "update service"); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM service_spare_parts WHERE service_id = $1`, svc.ID); err != nil {
		return fmt.Errorf("clear service parts: %w", err)
	}
	if err = insertParts(ctx, tx, svc.ID, parts); err != nil {
		return err
	}
	if svc.Price, err = recomputeServicePrice(ctx, tx, svc.ID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit service update: %w", err)
	}
	return nil
}

func insertParts(ctx context.Context, tx *sqlx.Tx, serviceID int64, parts []models.ServicePart) error {
	const query = `INSERT INTO service_spare_parts (service_id, spare_part_id, quantity) VALUES ($1, $2, $3)`
	for _, p := range parts {
		if _, err := tx.ExecContext(ctx, query, serviceID, p.SparePartID, p.Quantity); err != nil {
			return wrapWrite("insert service part", err)
		}
	}
	return nil
}

// recomputeServicePrice reads labor and the joined parts, then writes the service price.
func recomputeServicePrice(ctx context.Context, tx *sqlx.Tx, serviceID int64) (float64, error) {
	var labor float64
	if err := tx.GetContext(ctx, &labor, `SELECT labor_cost FROM services WHERE id = $1`, serviceID); err != nil {
		return 0, fmt.Errorf("load service labor: %w", err)
	}
	var lines []pricing.Line
	const linesQuery = `SELECT ssp.quantity, sp.unit_price FROM service_spare_parts ssp JOIN spare_parts sp ON sp.id = ssp.spare_part_id WHERE ssp.service_id = $1`
	if err := tx.SelectContext(ctx, &lines, linesQuery, serviceID); err != nil {
		return 0, fmt.Errorf("load service parts: %w", err)
	}
	price := pricing.ServiceTotal(labor, lines)
	if _, err := tx.ExecContext(ctx, `UPDATE services SET price = $2 WHERE id = $1`, serviceID, price); err != nil {
		return 0, fmt.Errorf("update service price: %w", err)
	}
	return price, nil
}

// FindByID returns a service row.
func (r *ServiceItemRepository) FindByID(ctx context.Context, id int64) (*models.ServiceItem, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	var svc models.ServiceItem
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service: %w", err)
	}
	return &svc, nil
}

// ListByRepair returns a repair's services, each with its part lines.
func (r *ServiceItemRepository) ListByRepair(ctx context.Context, repairID int64) ([]models.ServiceWithParts, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE repair_id = $1 ORDER BY id ASC`
	var services []models.ServiceItem
	if err := r.db.SelectContext(ctx, &services, query, repairID); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	result := make([]models.ServiceWithParts, 0, len(services))
	if len(services) == 0 {
		return result, nil
	}

	ids := make([]int64, len(services))
	for i, s := range services {
		ids[i] = s.ID
	}
	lines, err := r.partLines(ctx, sq.Eq{"ssp.service_id": ids})
	if err != nil {
		return nil, err
	}
	byService := make(map[int64][]models.ServicePartLine, len(services))
	for _, l := range lines {
		byService[l.ServiceID] = append(byService[l.ServiceID], l)
	}
	for _, s := range services {
		parts := byService[s.ID]
		if parts == nil {
			parts = []models.ServicePartLine{}
		}
		result = append(result, models.ServiceWithParts{ServiceItem: s, SpareParts: parts})
	}
	return result, nil
}

// PartLines returns the priced part rows of one service.
func (r *ServiceItemRepository) PartLines(ctx context.Context, serviceID int64) ([]models.ServicePartLine, error) {
	return r.partLines(ctx, sq.Eq{"ssp.service_id": serviceID})
}

func (r *ServiceItemRepository) partLines(ctx context.Context, where sq.Eq) ([]models.ServicePartLine, error) {
	query, args, err := psql.
		Select("ssp.service_id", "ssp.spare_part_id", "sp.name", "sp.unit_price", "ssp.quantity", "ROUND(ssp.quantity * sp.unit_price, 2) AS subtotal", "sp.active").
		From("service_spare_parts ssp").
		Join("spare_parts sp ON sp.id = ssp.spare_part_id").
		Where(where).
		OrderBy("ssp.service_id ASC", "sp.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build service parts query: %w", err)
	}
	lines := []models.ServicePartLine{}
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("list service parts: %w", err)
	}
	return lines, nil
}

// Delete removes a service and returns the repair it belonged to.
func (r *ServiceItemRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var repairID int64
	if err := r.db.GetContext(ctx, &repairID, `DELETE FROM services WHERE id = $1 RETURNING repair_id`, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("delete service: %w", err)
	}
	return repairID, nil
}
