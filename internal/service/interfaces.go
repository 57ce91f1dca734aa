package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/gateway"
	"github.com/pledgewatch/pledgewatch/internal/index"
)

// CompanyRepositoryInterface defines the repository interface for company persistence
type CompanyRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByName(ctx context.Context, name string) (*domain.Company, error)
	List(ctx context.Context) ([]*domain.Company, error)
	Stats(ctx context.Context, companyID string) (*domain.CompanyStats, error)
}

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document, archiveKey string) error
	ListByCompany(ctx context.Context, companyID string) ([]*domain.Document, error)
	Titles(ctx context.Context, companyID string) ([]string, error)
	CreatePassages(ctx context.Context, passages []domain.Passage) error
	AllPassages(ctx context.Context) ([]domain.Passage, error)
	GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error)
	SearchPassages(ctx context.Context, companyID string, embedding []float32, limit int) ([]domain.Passage, error)
}

// NewsRepositoryInterface defines the repository interface for news persistence
type NewsRepositoryInterface interface {
	Create(ctx context.Context, a *domain.NewsArticle) error
	GetRecent(ctx context.Context, companyID string, limit int) ([]*domain.NewsArticle, error)
	RecentBySeverity(ctx context.Context, companyID string, severity domain.Severity, since time.Time) ([]*domain.NewsArticle, error)
}

// AnalysisRepositoryInterface defines the repository interface for analysis persistence
type AnalysisRepositoryInterface interface {
	Create(ctx context.Context, a *domain.AnalysisResult) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]*domain.AnalysisResult, error)
}

// AlertRepositoryInterface defines the repository interface for alert persistence
type AlertRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error)
	MarkRead(ctx context.Context, id string) error
	LastCreated(ctx context.Context, companyID string, level domain.Severity) (time.Time, error)
}

// Assessor is the reasoning gateway capability
type Assessor interface {
	Assess(ctx context.Context, input gateway.AssessmentInput) *domain.AnalysisResult
}

// PassageIndex is the in-memory nearest-neighbor index capability
type PassageIndex interface {
	Upsert(passageID string, vector []float32) error
	Query(vector []float32, k int) ([]index.Hit, error)
	Remove(passageID string)
	Len() int
}

// Broadcaster fans pipeline events out to connected subscribers. A nil
// broadcaster is tolerated everywhere; events are simply dropped.
type Broadcaster interface {
	AlertCreated(alert *domain.Alert)
	NewsIngested(article *domain.NewsArticle)
	AnalysisCompleted(result *domain.AnalysisResult)
}

// Archiver stores raw document payloads in object storage
type Archiver interface {
	PutDocument(ctx context.Context, key, contentType string, body []byte) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
