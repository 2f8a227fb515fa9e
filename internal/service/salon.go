// Package service provides the business logic layer (use cases).
// Each service orchestrates one slice of the salon administration:
// registry (clients, professionals, catalog), orders, inventory,
// finance, loyalty, reports and auth.
package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/infra/observability"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var salonTracer = otel.Tracer("service/salon")

// SalonService covers the registry entities: clients, professionals and
// the service/package catalog.
type SalonService struct {
	clients       port.ClientStore
	professionals port.ProfessionalStore
	catalog       port.CatalogStore
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewSalonService creates a new registry service.
func NewSalonService(clients port.ClientStore, professionals port.ProfessionalStore, catalog port.CatalogStore, metrics *observability.Metrics, logger *zap.Logger) *SalonService {
	return &SalonService{
		clients:       clients,
		professionals: professionals,
		catalog:       catalog,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Clients
// ============================================================

func (s *SalonService) ListClients(ctx context.Context, opts port.ListOptions) ([]domain.Client, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.ListClients")
	defer span.End()

	return s.clients.ListClients(ctx, opts)
}

func (s *SalonService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.GetClient")
	defer span.End()

	return s.clients.GetClient(ctx, id)
}

func (s *SalonService) CreateClient(ctx context.Context, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.CreateClient")
	defer span.End()

	if err := validateClient(in); err != nil {
		return nil, err
	}

	client, err := s.clients.CreateClient(ctx, in)
	if err != nil {
		s.logger.Error("failed to create client", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("client created", zap.String("client_id", client.ID))
	return client, nil
}

func (s *SalonService) UpdateClient(ctx context.Context, id string, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.UpdateClient")
	defer span.End()

	if err := validateClient(in); err != nil {
		return nil, err
	}
	return s.clients.UpdateClient(ctx, id, in)
}

func (s *SalonService) DeleteClient(ctx context.Context, id string) error {
	ctx, span := salonTracer.Start(ctx, "SalonService.DeleteClient")
	defer span.End()

	if err := s.clients.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

func validateClient(in *domain.ClientInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Phone == "" {
		fields["phone"] = "required"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}

// ============================================================
// Professionals
// ============================================================

func (s *SalonService) ListProfessionals(ctx context.Context, opts port.ListOptions) ([]domain.Professional, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.ListProfessionals")
	defer span.End()

	return s.professionals.ListProfessionals(ctx, opts)
}

func (s *SalonService) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.GetProfessional")
	defer span.End()

	return s.professionals.GetProfessional(ctx, id)
}

func (s *SalonService) CreateProfessional(ctx context.Context, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.CreateProfessional")
	defer span.End()

	if err := validateProfessional(in); err != nil {
		return nil, err
	}

	pro, err := s.professionals.CreateProfessional(ctx, in)
	if err != nil {
		s.logger.Error("failed to create professional", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("professional created", zap.String("professional_id", pro.ID))
	return pro, nil
}

func (s *SalonService) UpdateProfessional(ctx context.Context, id string, in *domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.UpdateProfessional")
	defer span.End()

	if err := validateProfessional(in); err != nil {
		return nil, err
	}
	return s.professionals.UpdateProfessional(ctx, id, in)
}

func (s *SalonService) DeleteProfessional(ctx context.Context, id string) error {
	ctx, span := salonTracer.Start(ctx, "SalonService.DeleteProfessional")
	defer span.End()

	return s.professionals.DeleteProfessional(ctx, id)
}

func validateProfessional(in *domain.ProfessionalInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.CommissionRate < 0 || in.CommissionRate > 1 {
		fields["commission_rate"] = "must be between 0 and 1"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}

// ============================================================
// Catalog: services
// ============================================================

func (s *SalonService) ListServices(ctx context.Context, opts port.ListOptions) ([]domain.Service, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.ListServices")
	defer span.End()

	return s.catalog.ListServices(ctx, opts)
}

func (s *SalonService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.GetService")
	defer span.End()

	return s.catalog.GetService(ctx, id)
}

func (s *SalonService) CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.CreateService")
	defer span.End()

	if err := validateService(in); err != nil {
		return nil, err
	}
	return s.catalog.CreateService(ctx, in)
}

func (s *SalonService) UpdateService(ctx context.Context, id string, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.UpdateService")
	defer span.End()

	if err := validateService(in); err != nil {
		return nil, err
	}
	return s.catalog.UpdateService(ctx, id, in)
}

func (s *SalonService) DeleteService(ctx context.Context, id string) error {
	ctx, span := salonTracer.Start(ctx, "SalonService.DeleteService")
	defer span.End()

	return s.catalog.DeleteService(ctx, id)
}

func validateService(in *domain.ServiceInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if in.DurationMinutes < 0 {
		fields["duration_minutes"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}

// ============================================================
// Catalog: packages
// ============================================================

func (s *SalonService) ListPackages(ctx context.Context, opts port.ListOptions) ([]domain.ServicePackage, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.ListPackages")
	defer span.End()

	return s.catalog.ListPackages(ctx, opts)
}

func (s *SalonService) GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.GetPackage")
	defer span.End()

	return s.catalog.GetPackage(ctx, id)
}

func (s *SalonService) CreatePackage(ctx context.Context, in *domain.ServicePackageInput) (*domain.ServicePackage, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.CreatePackage")
	defer span.End()

	if err := validatePackage(in); err != nil {
		return nil, err
	}
	return s.catalog.CreatePackage(ctx, in)
}

func (s *SalonService) UpdatePackage(ctx context.Context, id string, in *domain.ServicePackageInput) (*domain.ServicePackage, error) {
	ctx, span := salonTracer.Start(ctx, "SalonService.UpdatePackage")
	defer span.End()

	if err := validatePackage(in); err != nil {
		return nil, err
	}
	return s.catalog.UpdatePackage(ctx, id, in)
}

func (s *SalonService) DeletePackage(ctx context.Context, id string) error {
	ctx, span := salonTracer.Start(ctx, "SalonService.DeletePackage")
	defer span.End()

	return s.catalog.DeletePackage(ctx, id)
}

func validatePackage(in *domain.ServicePackageInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if len(in.ServiceIDs) == 0 {
		fields["service_ids"] = "at least one service is required"
	}
	if in.SessionCount <= 0 {
		fields["session_count"] = "must be positive"
	}
	if in.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}
