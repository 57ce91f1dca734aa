package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, input service.IngestDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListByCompany(ctx context.Context, companyName string) ([]*domain.Document, error) {
	args := m.Called(ctx, companyName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func documentRouter(h *DocumentHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/upload-document", h.Upload)
	r.Get("/companies/{name}/documents", h.ListByCompany)
	return r
}

func newTestDocument() *domain.Document {
	return &domain.Document{
		ID:        "doc-1",
		CompanyID: "company-1",
		Type:      domain.DocumentTypeESGReport,
		Title:     "2024 ESG Report",
		Content:   "We pledge zero toxic waste.",
		Passages: []domain.Passage{
			{ID: "p1", DocumentID: "doc-1", CompanyID: "company-1", Index: 0, Text: "We pledge zero toxic waste."},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestDocumentHandler_Upload(t *testing.T) {
	t.Run("uploads a document", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("Ingest", mock.Anything, service.IngestDocumentInput{
			Company: "TechCorp",
			Type:    domain.DocumentTypeESGReport,
			Title:   "2024 ESG Report",
			Content: "We pledge zero toxic waste.",
		}).Return(newTestDocument(), nil)

		body, _ := json.Marshal(UploadDocumentRequest{
			Company: "TechCorp",
			Type:    "esg_report",
			Title:   "2024 ESG Report",
			Content: "We pledge zero toxic waste.",
		})
		req := httptest.NewRequest(http.MethodPost, "/upload-document", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		documentRouter(NewDocumentHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Data DocumentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "doc-1", resp.Data.ID)
		assert.Equal(t, 1, resp.Data.PassageCount)
	})

	t.Run("missing type defaults to other", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestDocumentInput) bool {
			return input.Type == domain.DocumentTypeOther
		})).Return(newTestDocument(), nil)

		body, _ := json.Marshal(UploadDocumentRequest{Company: "TechCorp", Content: "text"})
		req := httptest.NewRequest(http.MethodPost, "/upload-document", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		documentRouter(NewDocumentHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing content is rejected", func(t *testing.T) {
		svc := new(MockDocumentService)

		body, _ := json.Marshal(UploadDocumentRequest{Company: "TechCorp"})
		req := httptest.NewRequest(http.MethodPost, "/upload-document", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		documentRouter(NewDocumentHandler(svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})
}

func TestDocumentHandler_ListByCompany(t *testing.T) {
	t.Run("lists a company's documents", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("ListByCompany", mock.Anything, "TechCorp").Return([]*domain.Document{newTestDocument()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/companies/TechCorp/documents", nil)
		rec := httptest.NewRecorder()

		documentRouter(NewDocumentHandler(svc)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []DocumentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
	})
}
