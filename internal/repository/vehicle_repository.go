package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/autocare/autocare-api/internal/models"
)

const vehicleColumns = `id, make, model, year, color, plate, image, owner_id, created_at`

const lastMechanicExpr = `(SELECT m.full_name FROM repairs r JOIN users m ON m.id = r.mechanic_id WHERE r.vehicle_id = v.id ORDER BY r.start_date DESC, r.id DESC LIMIT 1) AS last_mechanic`

// VehicleRepository manages the vehicles table.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository constructs the repository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a vehicle and fills the generated columns.
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	const query = `INSERT INTO vehicles (make, model, year, color, plate, image, owner_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, v.Make, v.Model, v.Year, v.Color, v.Plate, v.Image, v.OwnerID)
	if err := row.Scan(&v.ID, &v.CreatedAt); err != nil {
		return wrapWrite("create vehicle", err)
	}
	return nil
}

// FindByID returns a vehicle by id.
func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindByPlate returns the most recently registered vehicle with the plate.
func (r *VehicleRepository) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	return r.findOne(ctx, sq.Eq{"plate": plate})
}

func (r *VehicleRepository) findOne(ctx context.Context, where sq.Eq) (*models.Vehicle, error) {
	query, args, err := psql.Select(vehicleColumns).From("vehicles").Where(where).OrderBy("id DESC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vehicle query: %w", err)
	}
	var v models.Vehicle
	if err := r.db.GetContext(ctx, &v, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return &v, nil
}

// List returns a page of vehicles with owner names and the latest mechanic.
func (r *VehicleRepository) List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleListItem, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 5
	}

	where := sq.And{}
	if filter.OwnerID != nil {
		where = append(where, sq.Eq{"v.owner_id": *filter.OwnerID})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("vehicles v").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build vehicle count: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	listQuery, args, err := psql.
		Select("v.id", "v.make", "v.model", "v.year", "v.color", "v.plate", "v.image", "v.owner_id", "v.created_at", "u.full_name AS client_name", lastMechanicExpr).
		From("vehicles v").
		Join("users u ON u.id = v.owner_id").
		Where(where).
		OrderBy("v.id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build vehicle list: %w", err)
	}
	var items []models.VehicleListItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list vehicles: %w", err)
	}
	return items, total, nil
}

// Update writes the descriptive fields and image of a vehicle.
func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	const query = `UPDATE vehicles SET make = $2, model = $3, year = $4, color = $5, plate = $6, image = $7 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, v.ID, v.Make, v.Model, v.Year, v.Color, v.Plate, v.Image)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return expectAffected(res, "update vehicle")
}

// Delete removes a vehicle. Its repairs cascade.
func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return expectAffected(res, "delete vehicle")
}
