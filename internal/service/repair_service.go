package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type repairRepository interface {
	Create(ctx context.Context, repair *models.Repair) error
	FindByID(ctx context.Context, id int64) (*models.Repair, error)
	FindItem(ctx context.Context, id int64) (*models.RepairListItem, error)
	List(ctx context.Context, filter models.RepairFilter) ([]models.RepairListItem, error)
	UpcomingMaintenance(ctx context.Context, ownerID int64, from, to time.Time) ([]models.RepairListItem, error)
	Update(ctx context.Context, repair *models.Repair) error
	Delete(ctx context.Context, id int64) error
	RecordDecision(ctx context.Context, repairID, clientID int64, decision, status string) error
}

// vehicleReader is satisfied by VehicleService, so repairs see vehicles
// through the same ownership rules as the vehicle endpoints.
type vehicleReader interface {
	Get(ctx context.Context, actor *models.User, id int64) (*models.Vehicle, error)
	Resolve(ctx context.Context, actor *models.User, identifier string) (*models.Vehicle, error)
}

// RepairService manages work orders and quote decisions.
type RepairService struct {
	repo      repairRepository
	vehicles  vehicleReader
	images    imageUploader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRepairService constructs a RepairService.
func NewRepairService(repo repairRepository, vehicles vehicleReader, images imageUploader, validate *validator.Validate, logger *zap.Logger) *RepairService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RepairService{repo: repo, vehicles: vehicles, images: images, validator: validate, logger: logger, now: time.Now}
}

// Create opens a repair assigned to the acting mechanic.
func (s *RepairService) Create(ctx context.Context, actor *models.User, req models.RepairRequest, before *multipart.FileHeader) (*models.Repair, error) {
	if err := authorize(actor, models.CapRepairWrite); err != nil {
		return nil, err
	}
	repair := &models.Repair{}
	if err := s.apply(repair, req); err != nil {
		return nil, err
	}
	if err := s.images.Validate("image_before", before); err != nil {
		return nil, err
	}
	if _, err := s.vehicles.Get(ctx, actor, req.VehicleID); err != nil {
		return nil, err
	}

	path, err := s.images.Save("image_before", before)
	if err != nil {
		return nil, err
	}
	mechanicID := actor.ID
	repair.MechanicID = &mechanicID
	repair.ImageBefore = path

	if err := s.repo.Create(ctx, repair); err != nil {
		s.images.Remove(path)
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "vehicle not found")
		}
		return nil, appErrors.Internal(err, "failed to create repair")
	}
	s.logger.Info("repair created", zap.Int64("repair_id", repair.ID), zap.Int64("mechanic_id", actor.ID))
	return repair, nil
}

// List returns repairs visible to the actor.
func (s *RepairService) List(ctx context.Context, actor *models.User) ([]models.RepairListItem, error) {
	if err := authorize(actor, models.CapRepairRead); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, models.RepairFilter{OwnerID: ownerScope(actor)})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list repairs")
	}
	return s.redact(actor, items), nil
}

// ListByVehicle returns the repairs of a vehicle given by id or plate.
func (s *RepairService) ListByVehicle(ctx context.Context, actor *models.User, identifier string) ([]models.RepairListItem, error) {
	if err := authorize(actor, models.CapRepairRead); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.Resolve(ctx, actor, identifier)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, models.RepairFilter{VehicleID: &vehicle.ID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list repairs")
	}
	return s.redact(actor, items), nil
}

// UpcomingMaintenance lists the client's open repairs due today or tomorrow.
func (s *RepairService) UpcomingMaintenance(ctx context.Context, actor *models.User) ([]models.RepairListItem, error) {
	if err := authorize(actor, models.CapUpcomingMaintenance); err != nil {
		return nil, err
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	items, err := s.repo.UpcomingMaintenance(ctx, actor.ID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list upcoming maintenance")
	}
	return s.redact(actor, items), nil
}

// Get returns a repair. Clients get 403 for repairs on other people's vehicles.
func (s *RepairService) Get(ctx context.Context, actor *models.User, id int64) (*models.RepairListItem, error) {
	if err := authorize(actor, models.CapRepairRead); err != nil {
		return nil, err
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	if !readsAll(actor) && item.OwnerID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "repair belongs to another client")
	}
	redacted := s.redact(actor, []models.RepairListItem{*item})
	return &redacted[0], nil
}

// Update replaces the editable fields. New images replace and delete the old files.
func (s *RepairService) Update(ctx context.Context, actor *models.User, id int64, req models.RepairRequest, before, after *multipart.FileHeader) (*models.Repair, error) {
	if err := authorize(actor, models.CapRepairWrite); err != nil {
		return nil, err
	}
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	if err := s.apply(repair, req); err != nil {
		return nil, err
	}
	if err := s.images.Validate("image_before", before); err != nil {
		return nil, err
	}
	if err := s.images.Validate("image_after", after); err != nil {
		return nil, err
	}

	newBefore, err := s.images.Save("image_before", before)
	if err != nil {
		return nil, err
	}
	newAfter, err := s.images.Save("image_after", after)
	if err != nil {
		s.images.Remove(newBefore)
		return nil, err
	}
	oldBefore, oldAfter := repair.ImageBefore, repair.ImageAfter
	if newBefore != nil {
		repair.ImageBefore = newBefore
	}
	if newAfter != nil {
		repair.ImageAfter = newAfter
	}

	if err := s.repo.Update(ctx, repair); err != nil {
		s.images.Remove(newBefore)
		s.images.Remove(newAfter)
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "vehicle not found")
		}
		return nil, lookupError(err, "repair not found", "failed to update repair")
	}
	if newBefore != nil {
		s.images.Remove(oldBefore)
	}
	if newAfter != nil {
		s.images.Remove(oldAfter)
	}
	return repair, nil
}

// Delete removes a repair, its services and its images.
func (s *RepairService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := authorize(actor, models.CapRepairDelete); err != nil {
		return err
	}
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "repair not found", "failed to load repair")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "repair not found", "failed to delete repair")
	}
	s.images.Remove(repair.ImageBefore)
	s.images.Remove(repair.ImageAfter)
	return nil
}

// DecideQuote records a client's approval or rejection and returns the updated repair.
func (s *RepairService) DecideQuote(ctx context.Context, actor *models.User, id int64, req models.QuoteDecisionRequest) (*models.RepairListItem, error) {
	if err := authorize(actor, models.CapRepairQuoteDecision); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "decision must be 'aprobada' or 'rechazada'")
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	if item.OwnerID != actor.ID && !actor.Role.Can(models.CapActForOthers) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "repair belongs to another client")
	}

	status := models.RepairStatusRejected
	if req.Decision == models.QuoteApproved {
		status = models.RepairStatusApproved
	}
	if err := s.repo.RecordDecision(ctx, id, actor.ID, req.Decision, status); err != nil {
		return nil, lookupError(err, "repair not found", "failed to record quote decision")
	}
	s.logger.Info("quote decision recorded", zap.Int64("repair_id", id), zap.String("decision", req.Decision), zap.Int64("actor_id", actor.ID))

	item.Status = status
	redacted := s.redact(actor, []models.RepairListItem{*item})
	return &redacted[0], nil
}

func (s *RepairService) apply(repair *models.Repair, req models.RepairRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid repair payload")
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	if end != nil && end.Before(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	next, err := parseOptionalDate("next_maintenance_date", req.NextMaintenanceDate)
	if err != nil {
		return err
	}

	repair.RepairType = strings.TrimSpace(req.RepairType)
	repair.Description = req.Description
	repair.StartDate = start
	repair.EndDate = end
	repair.Status = strings.TrimSpace(req.Status)
	repair.InternalNotes = req.InternalNotes
	repair.NextMaintenanceDate = next
	repair.VehicleID = req.VehicleID
	return nil
}

// redact hides staff-only notes from clients.
func (s *RepairService) redact(actor *models.User, items []models.RepairListItem) []models.RepairListItem {
	if items == nil {
		return []models.RepairListItem{}
	}
	if actor.Role.IsStaff() {
		return items
	}
	for i := range items {
		items[i].InternalNotes = nil
	}
	return items
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must use YYYY-MM-DD", field))
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
