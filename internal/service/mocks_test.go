package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/gateway"
	"github.com/pledgewatch/pledgewatch/internal/index"
)

// MockCompanyRepository is a mock implementation of CompanyRepositoryInterface
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context) ([]*domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) Stats(ctx context.Context, companyID string) (*domain.CompanyStats, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyStats), args.Error(1)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document, archiveKey string) error {
	args := m.Called(ctx, d, archiveKey)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByCompany(ctx context.Context, companyID string) ([]*domain.Document, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Titles(ctx context.Context, companyID string) ([]string, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) CreatePassages(ctx context.Context, passages []domain.Passage) error {
	args := m.Called(ctx, passages)
	return args.Error(0)
}

func (m *MockDocumentRepository) AllPassages(ctx context.Context) ([]domain.Passage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passage), args.Error(1)
}

func (m *MockDocumentRepository) GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passage), args.Error(1)
}

func (m *MockDocumentRepository) SearchPassages(ctx context.Context, companyID string, embedding []float32, limit int) ([]domain.Passage, error) {
	args := m.Called(ctx, companyID, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passage), args.Error(1)
}

// MockNewsRepository is a mock implementation of NewsRepositoryInterface
type MockNewsRepository struct {
	mock.Mock
}

func (m *MockNewsRepository) Create(ctx context.Context, a *domain.NewsArticle) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockNewsRepository) GetRecent(ctx context.Context, companyID string, limit int) ([]*domain.NewsArticle, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NewsArticle), args.Error(1)
}

func (m *MockNewsRepository) RecentBySeverity(ctx context.Context, companyID string, severity domain.Severity, since time.Time) ([]*domain.NewsArticle, error) {
	args := m.Called(ctx, companyID, severity, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NewsArticle), args.Error(1)
}

// MockAnalysisRepository is a mock implementation of AnalysisRepositoryInterface
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, a *domain.AnalysisResult) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalysisRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]*domain.AnalysisResult, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalysisResult), args.Error(1)
}

// MockAlertRepository is a mock implementation of AlertRepositoryInterface
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

func (m *MockAlertRepository) ListUnread(ctx context.Context, companyID string) ([]*domain.Alert, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Alert), args.Error(1)
}

func (m *MockAlertRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertRepository) LastCreated(ctx context.Context, companyID string, level domain.Severity) (time.Time, error) {
	args := m.Called(ctx, companyID, level)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockAssessor is a mock implementation of Assessor
type MockAssessor struct {
	mock.Mock
}

func (m *MockAssessor) Assess(ctx context.Context, input gateway.AssessmentInput) *domain.AnalysisResult {
	args := m.Called(ctx, input)
	return args.Get(0).(*domain.AnalysisResult)
}

// MockBroadcaster records every event it receives.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) AlertCreated(alert *domain.Alert) {
	m.Called(alert)
}

func (m *MockBroadcaster) NewsIngested(article *domain.NewsArticle) {
	m.Called(article)
}

func (m *MockBroadcaster) AnalysisCompleted(result *domain.AnalysisResult) {
	m.Called(result)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) PutDocument(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

// MockPassageIndex is a mock implementation of PassageIndex
type MockPassageIndex struct {
	mock.Mock
}

func (m *MockPassageIndex) Upsert(passageID string, vector []float32) error {
	args := m.Called(passageID, vector)
	return args.Error(0)
}

func (m *MockPassageIndex) Query(vector []float32, k int) ([]index.Hit, error) {
	args := m.Called(vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]index.Hit), args.Error(1)
}

func (m *MockPassageIndex) Remove(passageID string) {
	m.Called(passageID)
}

func (m *MockPassageIndex) Len() int {
	args := m.Called()
	return args.Int(0)
}

// MockUUIDGenerator returns a scripted sequence of IDs.
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}
