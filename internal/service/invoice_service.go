package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/autocare/autocare-api/internal/models"
	"github.com/autocare/autocare-api/internal/repository"
	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

const invoiceNumberAttempts = 5

type invoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	FindByID(ctx context.Context, id int64) (*models.Invoice, error)
	FindByRepair(ctx context.Context, repairID int64) (*models.Invoice, error)
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceListItem, error)
}

type invoiceRepairReader interface {
	FindByID(ctx context.Context, id int64) (*models.Repair, error)
}

type invoiceVehicleReader interface {
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
}

type invoiceUserReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type invoiceServiceLister interface {
	ListByRepair(ctx context.Context, repairID int64) ([]models.ServiceWithParts, error)
}

type invoiceRenderer interface {
	InvoicePDF(detail *models.InvoiceDetail) (*ExportResult, error)
	InvoiceList(items []models.InvoiceListItem, format string, now time.Time) (*ExportResult, error)
}

// InvoiceService issues invoices for finished repairs and renders them.
type InvoiceService struct {
	repo      invoiceRepository
	repairs   invoiceRepairReader
	vehicles  invoiceVehicleReader
	users     invoiceUserReader
	services  invoiceServiceLister
	renderer  invoiceRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	number    func(year int) string
}

// InvoiceServiceDeps bundles the collaborators of InvoiceService.
type InvoiceServiceDeps struct {
	Invoices invoiceRepository
	Repairs  invoiceRepairReader
	Vehicles invoiceVehicleReader
	Users    invoiceUserReader
	Services invoiceServiceLister
	Renderer invoiceRenderer
	Metrics  *MetricsService
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(deps InvoiceServiceDeps, validate *validator.Validate, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InvoiceService{
		repo:      deps.Invoices,
		repairs:   deps.Repairs,
		vehicles:  deps.Vehicles,
		users:     deps.Users,
		services:  deps.Services,
		renderer:  deps.Renderer,
		metrics:   deps.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		number:    randomInvoiceNumber,
	}
}

// Create issues an invoice for a finished repair. The bool is false when an
// invoice already existed and was returned unchanged.
func (s *InvoiceService) Create(ctx context.Context, actor *models.User, req models.CreateInvoiceRequest) (*models.Invoice, bool, error) {
	if err := authorize(actor, models.CapInvoiceCreate); err != nil {
		return nil, false, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}

	repair, err := s.repairs.FindByID(ctx, req.RepairID)
	if err != nil {
		return nil, false, lookupError(err, "repair not found", "failed to load repair")
	}
	if repair.Status != models.RepairStatusFinished {
		return nil, false, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrBusinessRule, "only finished repairs can be invoiced"),
			map[string]interface{}{"current_status": repair.Status},
		)
	}
	if !actor.Role.Can(models.CapActForOthers) && (repair.MechanicID == nil || *repair.MechanicID != actor.ID) {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "mechanics can only invoice their own repairs")
	}

	if existing, err := s.repo.FindByRepair(ctx, repair.ID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Internal(err, "failed to check existing invoice")
	}

	vehicle, err := s.vehicles.FindByID(ctx, repair.VehicleID)
	if err != nil {
		return nil, false, lookupError(err, "vehicle not found", "failed to load vehicle")
	}

	amount := 0.0
	if repair.Price != nil {
		amount = *repair.Price
	}
	status := req.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}
	now := s.now()
	inv := &models.Invoice{
		IssuedOn: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Subtotal: amount,
		Total:    amount,
		Status:   status,
		RepairID: repair.ID,
		UserID:   vehicle.OwnerID,
	}

	for attempt := 1; attempt <= invoiceNumberAttempts; attempt++ {
		inv.InvoiceNumber = s.number(now.Year())
		err = s.repo.Create(ctx, inv)
		if err == nil {
			s.metrics.RecordInvoiceIssued(inv.Status)
			s.logger.Info("invoice issued",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Int64("repair_id", repair.ID),
				zap.Float64("total", inv.Total),
			)
			return inv, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, appErrors.Internal(err, "failed to create invoice")
		}
		if repository.ViolatedConstraint(err) == repository.InvoiceRepairConstraint {
			existing, findErr := s.repo.FindByRepair(ctx, repair.ID)
			if findErr != nil {
				return nil, false, appErrors.Internal(findErr, "failed to load existing invoice")
			}
			return existing, false, nil
		}
		s.logger.Warn("invoice number collision", zap.String("invoice_number", inv.InvoiceNumber), zap.Int("attempt", attempt))
	}
	return nil, false, appErrors.Internal(err, "failed to allocate a unique invoice number")
}

// List returns invoices visible to the actor, newest first.
func (s *InvoiceService) List(ctx context.Context, actor *models.User) ([]models.InvoiceListItem, error) {
	if err := authorize(actor, models.CapInvoiceRead); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, models.InvoiceFilter{UserID: ownerScope(actor)})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list invoices")
	}
	return items, nil
}

// Get returns an invoice with everything printed on it.
func (s *InvoiceService) Get(ctx context.Context, actor *models.User, id int64) (*models.InvoiceDetail, error) {
	if err := authorize(actor, models.CapInvoiceRead); err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "invoice not found", "failed to load invoice")
	}
	if !readsAll(actor) && inv.UserID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invoice belongs to another client")
	}

	client, err := s.users.FindByID(ctx, inv.UserID)
	if err != nil {
		return nil, lookupError(err, "client not found", "failed to load client")
	}
	repair, err := s.repairs.FindByID(ctx, inv.RepairID)
	if err != nil {
		return nil, lookupError(err, "repair not found", "failed to load repair")
	}
	vehicle, err := s.vehicles.FindByID(ctx, repair.VehicleID)
	if err != nil {
		return nil, lookupError(err, "vehicle not found", "failed to load vehicle")
	}
	withParts, err := s.services.ListByRepair(ctx, repair.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load services")
	}
	services := make([]models.ServiceItem, 0, len(withParts))
	for _, svc := range withParts {
		services = append(services, svc.ServiceItem)
	}
	if !actor.Role.IsStaff() {
		repair.InternalNotes = nil
	}

	return &models.InvoiceDetail{
		Invoice:  *inv,
		Client:   client.Info(),
		Vehicle:  *vehicle,
		Repair:   *repair,
		Services: services,
	}, nil
}

// PDF renders an invoice document.
func (s *InvoiceService) PDF(ctx context.Context, actor *models.User, id int64) (*ExportResult, error) {
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.InvoicePDF(detail)
}

// Export renders the full invoice list as a spreadsheet.
func (s *InvoiceService) Export(ctx context.Context, actor *models.User, format string) (*ExportResult, error) {
	if err := authorize(actor, models.CapInvoiceExport); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, models.InvoiceFilter{UserID: ownerScope(actor)})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list invoices")
	}
	return s.renderer.InvoiceList(items, format, s.now())
}

func randomInvoiceNumber(year int) string {
	return fmt.Sprintf("FAC-%d-%04d", year, rand.Intn(10000))
}
