package domain

import (
	"fmt"
	"time"
)

// Company represents a monitored company
type Company struct {
	ID          string
	Name        string
	Description string
	Industry    string
	Website     string
	CreatedAt   time.Time
}

// CompanyStats summarizes what the pipeline knows about a company
type CompanyStats struct {
	CompanyName        string
	DocumentCount      int
	NewsCount          int
	AnalysisCount      int
	LatestContradLevel ContradictionLevel
}

// NewCompany creates a new Company instance
func NewCompany(id, name, description, industry, website string, createdAt time.Time) *Company {
	return &Company{
		ID:          id,
		Name:        name,
		Description: description,
		Industry:    industry,
		Website:     website,
		CreatedAt:   createdAt,
	}
}

// ValidateCompany validates a Company instance
func ValidateCompany(c *Company) error {
	if c == nil {
		return fmt.Errorf("company cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("company ID is required")
	}

	if c.Name == "" {
		return fmt.Errorf("company Name is required")
	}

	return nil
}
