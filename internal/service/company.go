package service

import (
	"context"
	"strings"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// CompanyService handles the monitored-company roster.
type CompanyService struct {
	companies CompanyRepositoryInterface
	uuidGen   UUIDGenerator
}

// NewCompanyService creates a new CompanyService instance
func NewCompanyService(companies CompanyRepositoryInterface) *CompanyService {
	return &CompanyService{
		companies: companies,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// CreateCompanyInput represents the input for registering a company
type CreateCompanyInput struct {
	Name        string
	Description string
	Industry    string
	Website     string
}

// Create registers a company for monitoring.
func (s *CompanyService) Create(ctx context.Context, input CreateCompanyInput) (*domain.Company, error) {
	ctx, span := telemetry.StartSpan(ctx, "CompanyService.Create", telemetry.SpanAttributes{
		Company:   input.Name,
		Operation: "create",
	})
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "company name is required")
	}

	company := &domain.Company{
		ID:          s.uuidGen.NewString(),
		Name:        name,
		Description: input.Description,
		Industry:    input.Industry,
		Website:     input.Website,
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.ValidateCompany(company); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid company", err)
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// GetByName resolves a company by its name.
func (s *CompanyService) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	return s.companies.GetByName(ctx, name)
}

// List returns all monitored companies.
func (s *CompanyService) List(ctx context.Context) ([]*domain.Company, error) {
	return s.companies.List(ctx)
}

// Stats returns aggregate pipeline knowledge about a company.
func (s *CompanyService) Stats(ctx context.Context, name string) (*domain.CompanyStats, error) {
	company, err := s.companies.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.companies.Stats(ctx, company.ID)
}
