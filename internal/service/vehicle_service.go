package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type vehicleRepository interface {
	Create(ctx context.Context, v *models.Vehicle) error
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	List(ctx context.Context, filter models.VehicleFilter) ([]models.VehicleListItem, int, error)
	Update(ctx context.Context, v *models.Vehicle) error
	Delete(ctx context.Context, id int64) error
}

type clientLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type imageUploader interface {
	Validate(field string, file *multipart.FileHeader) error
	Save(field string, file *multipart.FileHeader) (*string, error)
	Remove(path *string)
}

// VehicleService manages client vehicles.
type VehicleService struct {
	repo      vehicleRepository
	users     clientLookup
	images    imageUploader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(repo vehicleRepository, users clientLookup, images imageUploader, validate *validator.Validate, logger *zap.Logger) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VehicleService{repo: repo, users: users, images: images, validator: validate, logger: logger}
}

// Create registers a vehicle for the client identified by email.
func (s *VehicleService) Create(ctx context.Context, actor *models.User, req models.CreateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error) {
	if err := authorize(actor, models.CapVehicleWrite); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	if err := s.images.Validate("image", image); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.ClientEmail)))
	if err != nil {
		return nil, lookupError(err, "client not found", "failed to look up client")
	}

	path, err := s.images.Save("image", image)
	if err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		Make:    strings.TrimSpace(req.Make),
		Model:   strings.TrimSpace(req.Model),
		Year:    req.Year,
		Color:   strings.TrimSpace(req.Color),
		Plate:   normalizePlate(req.Plate),
		Image:   path,
		OwnerID: owner.ID,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		s.images.Remove(path)
		return nil, appErrors.Internal(err, "failed to create vehicle")
	}
	return vehicle, nil
}

// List returns a page of vehicles. Clients only see their own.
func (s *VehicleService) List(ctx context.Context, actor *models.User, page, pageSize int) ([]models.VehicleListItem, *models.Pagination, error) {
	if err := authorize(actor, models.CapVehicleRead); err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 5
	}
	items, total, err := s.repo.List(ctx, models.VehicleFilter{OwnerID: ownerScope(actor), Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list vehicles")
	}
	if items == nil {
		items = []models.VehicleListItem{}
	}
	return items, models.NewPagination(page, pageSize, total), nil
}

// Get returns a vehicle. Vehicles owned by someone else look missing to clients.
func (s *VehicleService) Get(ctx context.Context, actor *models.User, id int64) (*models.Vehicle, error) {
	if err := authorize(actor, models.CapVehicleRead); err != nil {
		return nil, err
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "vehicle not found", "failed to load vehicle")
	}
	if !readsAll(actor) && vehicle.OwnerID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
	}
	return vehicle, nil
}

// Resolve finds a vehicle by numeric id or plate, applying the same ownership rule as Get.
func (s *VehicleService) Resolve(ctx context.Context, actor *models.User, identifier string) (*models.Vehicle, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return s.Get(ctx, actor, id)
	}
	if err := authorize(actor, models.CapVehicleRead); err != nil {
		return nil, err
	}
	vehicle, err := s.repo.FindByPlate(ctx, normalizePlate(identifier))
	if err != nil {
		return nil, lookupError(err, "vehicle not found", "failed to load vehicle")
	}
	if !readsAll(actor) && vehicle.OwnerID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
	}
	return vehicle, nil
}

// Update replaces the vehicle fields. A new image replaces and deletes the old file.
func (s *VehicleService) Update(ctx context.Context, actor *models.User, id int64, req models.UpdateVehicleRequest, image *multipart.FileHeader) (*models.Vehicle, error) {
	if err := authorize(actor, models.CapVehicleWrite); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	if err := s.images.Validate("image", image); err != nil {
		return nil, err
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "vehicle not found", "failed to load vehicle")
	}

	newPath, err := s.images.Save("image", image)
	if err != nil {
		return nil, err
	}
	oldPath := vehicle.Image

	vehicle.Make = strings.TrimSpace(req.Make)
	vehicle.Model = strings.TrimSpace(req.Model)
	vehicle.Year = req.Year
	vehicle.Color = strings.TrimSpace(req.Color)
	vehicle.Plate = normalizePlate(req.Plate)
	if newPath != nil {
		vehicle.Image = newPath
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		s.images.Remove(newPath)
		return nil, lookupError(err, "vehicle not found", "failed to update vehicle")
	}
	if newPath != nil {
		s.images.Remove(oldPath)
	}
	return vehicle, nil
}

// Delete removes a vehicle and its stored image.
func (s *VehicleService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := authorize(actor, models.CapVehicleDelete); err != nil {
		return err
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "vehicle not found", "failed to load vehicle")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "vehicle not found", "failed to delete vehicle")
	}
	s.images.Remove(vehicle.Image)
	return nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
