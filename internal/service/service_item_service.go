package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/pricing"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type serviceItemRepository interface {
	Create(ctx context.Context, svc *models.ServiceItem, parts []models.ServicePart) error
	Update(ctx context.Context, svc *models.ServiceItem, parts []models.ServicePart) error
	FindByID(ctx context.Context, id int64) (*models.ServiceItem, error)
	ListByRepair(ctx context.Context, repairID int64) ([]models.ServiceWithParts, error)
	PartLines(ctx context.Context, serviceID int64) ([]models.ServicePartLine, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repairPricer interface {
	FindItem(ctx context.Context, id int64) (*models.RepairListItem, error)
	RecomputePrice(ctx context.Context, repairID int64) (*float64, error)
}

type sparePartChecker interface {
	ExistingIDs(ctx context.Context, ids []int64, activeOnly bool) (map[int64]struct{}, error)
}

// ServiceItemService manages the services of a repair and keeps both price levels current.
type ServiceItemService struct {
	repo      serviceItemRepository
	repairs   repairPricer
	parts     sparePartChecker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewServiceItemService constructs a ServiceItemService.
func NewServiceItemService(repo serviceItemRepository, repairs repairPricer, parts sparePartChecker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ServiceItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ServiceItemService{repo: repo, repairs: repairs, parts: parts, metrics: metrics, validator: validate, logger: logger}
}

// Create adds a service to a repair and returns its computed price.
func (s *ServiceItemService) Create(ctx context.Context, actor *models.User, req models.ServiceRequest) (*models.ServiceSaved, error) {
	if err := authorize(actor, models.CapServiceWrite); err != nil {
		return nil, err
	}
	svc := &models.ServiceItem{}
	parts, err := s.prepare(svc, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repairs.FindItem(ctx, req.RepairID); err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	if err := s.checkParts(ctx, parts, nil); err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.repo.Create(ctx, svc, parts)
	s.metrics.ObserveDBQuery("service_write", time.Since(start))
	s.metrics.RecordPriceRecompute("service", err)
	if err != nil {
		return nil, s.writeError(err, "failed to create service")
	}
	if err := s.recomputeRepair(ctx, svc.RepairID); err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.Int64("service_id", svc.ID), zap.Int64("repair_id", svc.RepairID), zap.Float64("price", svc.Price))
	return &models.ServiceSaved{ServiceID: svc.ID, TotalPrice: svc.Price}, nil
}

// Update rewrites a service and its parts, then reprices the affected repairs.
func (s *ServiceItemService) Update(ctx context.Context, actor *models.User, id int64, req models.ServiceRequest) (*models.ServiceSaved, error) {
	if err := authorize(actor, models.CapServiceWrite); err != nil {
		return nil, err
	}
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "service not found", "failed to load service")
	}
	previousRepair := svc.RepairID

	parts, err := s.prepare(svc, req)
	if err != nil {
		return nil, err
	}
	if svc.RepairID != previousRepair {
		if _, err := s.repairs.FindItem(ctx, svc.RepairID); err != nil {
			return nil, lookupError(err, "repair not found", "failed to load repair")
		}
	}

	attached, err := s.repo.PartLines(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load service parts")
	}
	kept := make(map[int64]struct{}, len(attached))
	for _, line := range attached {
		kept[line.SparePartID] = struct{}{}
	}
	if err := s.checkParts(ctx, parts, kept); err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.repo.Update(ctx, svc, parts)
	s.metrics.ObserveDBQuery("service_write", time.Since(start))
	s.metrics.RecordPriceRecompute("service", err)
	if err != nil {
		return nil, s.writeError(err, "failed to update service")
	}
	if err := s.recomputeRepair(ctx, svc.RepairID); err != nil {
		return nil, err
	}
	if previousRepair != svc.RepairID {
		if err := s.recomputeRepair(ctx, previousRepair); err != nil {
			return nil, err
		}
	}
	return &models.ServiceSaved{ServiceID: svc.ID, TotalPrice: svc.Price}, nil
}

// Delete removes a service and reprices its repair.
func (s *ServiceItemService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := authorize(actor, models.CapServiceDelete); err != nil {
		return err
	}
	repairID, err := s.repo.Delete(ctx, id)
	if err != nil {
		return lookupError(err, "service not found", "failed to delete service")
	}
	return s.recomputeRepair(ctx, repairID)
}

// ListByRepair returns a repair's services with their parts.
func (s *ServiceItemService) ListByRepair(ctx context.Context, actor *models.User, repairID int64) ([]models.ServiceWithParts, error) {
	if err := s.authorizeRepairRead(ctx, actor, repairID); err != nil {
		return nil, err
	}
	services, err := s.repo.ListByRepair(ctx, repairID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list services")
	}
	return services, nil
}

// Detail breaks a service down into labor, parts and the repair timeline.
func (s *ServiceItemService) Detail(ctx context.Context, actor *models.User, id int64) (*models.ServiceDetail, error) {
	if err := authorize(actor, models.CapServiceRead); err != nil {
		return nil, err
	}
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "service not found", "failed to load service")
	}
	repair, err := s.repairs.FindItem(ctx, svc.RepairID)
	if err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	if !readsAll(actor) && repair.OwnerID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "service belongs to another client")
	}
	lines, err := s.repo.PartLines(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load service parts")
	}

	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, pricing.Line{Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}
	return &models.ServiceDetail{
		Service:         *svc,
		RepairStartDate: repair.StartDate,
		RepairEndDate:   repair.EndDate,
		RepairStatus:    repair.Status,
		SpareParts:      lines,
		SparePartsTotal: pricing.PartsTotal(priced),
		LaborCost:       svc.LaborCost,
	}, nil
}

func (s *ServiceItemService) authorizeRepairRead(ctx context.Context, actor *models.User, repairID int64) error {
	if err := authorize(actor, models.CapServiceRead); err != nil {
		return err
	}
	repair, err := s.repairs.FindItem(ctx, repairID)
	if err != nil {
		return lookupError(err, "repair not found", "failed to load repair")
	}
	if !readsAll(actor) && repair.OwnerID != actor.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "repair belongs to another client")
	}
	return nil
}

// prepare validates the request into svc and returns the merged part list.
func (s *ServiceItemService) prepare(svc *models.ServiceItem, req models.ServiceRequest) ([]models.ServicePart, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	svc.Name = strings.TrimSpace(req.Name)
	svc.Description = strings.TrimSpace(req.Description)
	svc.RepairID = req.RepairID
	svc.StartDate = start
	svc.EndDate = end
	svc.LaborCost = pricing.Round2(req.LaborCost)
	return MergeParts(req.SpareParts), nil
}

// checkParts rejects unknown parts. Inactive parts pass only when already attached.
func (s *ServiceItemService) checkParts(ctx context.Context, parts []models.ServicePart, attached map[int64]struct{}) error {
	if len(parts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.SparePartID)
	}
	active, err := s.parts.ExistingIDs(ctx, ids, true)
	if err != nil {
		return appErrors.Internal(err, "failed to check spare parts")
	}
	var unknown []int64
	for _, id := range ids {
		if _, ok := active[id]; ok {
			continue
		}
		if _, ok := attached[id]; ok {
			continue
		}
		unknown = append(unknown, id)
	}
	if len(unknown) > 0 {
		return appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "unknown spare part"),
			map[string]interface{}{"spare_part_ids": unknown},
		)
	}
	return nil
}

func (s *ServiceItemService) recomputeRepair(ctx context.Context, repairID int64) error {
	start := time.Now()
	total, err := s.repairs.RecomputePrice(ctx, repairID)
	s.metrics.ObserveDBQuery("repair_price", time.Since(start))
	s.metrics.RecordPriceRecompute("repair", err)
	if err != nil {
		return appErrors.Internal(err, fmt.Sprintf("failed to recompute price of repair %d", repairID))
	}
	if total == nil {
		s.logger.Debug("repair price cleared", zap.Int64("repair_id", repairID))
	} else {
		s.logger.Debug("repair price updated", zap.Int64("repair_id", repairID), zap.Float64("price", *total))
	}
	return nil
}

func (s *ServiceItemService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrForeignKey) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown spare part or repair")
	}
	return lookupError(err, "service not found", message)
}

// MergeParts folds repeated part ids into one line. A zero quantity counts as one.
func MergeParts(parts []models.ServicePart) []models.ServicePart {
	merged := make([]models.ServicePart, 0, len(parts))
	index := make(map[int64]int, len(parts))
	for _, p := range parts {
		qty := p.Quantity
		if qty <= 0 {
			qty = 1
		}
		if i, ok := index[p.SparePartID]; ok {
			merged[i].Quantity += qty
			continue
		}
		index[p.SparePartID] = len(merged)
		merged = append(merged, models.ServicePart{SparePartID: p.SparePartID, Quantity: qty})
	}
	return merged
}
