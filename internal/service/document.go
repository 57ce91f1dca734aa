package service

import (
	"context"
	"log"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
	"github.com/pledgewatch/pledgewatch/internal/storage"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// DocumentService ingests commitment documents: content is chunked into
// passages, each passage embedded once and cached with the record, and
// the in-memory index updated. Documents are immutable after ingestion.
type DocumentService struct {
	companies CompanyRepositoryInterface
	documents DocumentRepositoryInterface
	embedder  EmbeddingClient
	index     PassageIndex
	archiver  Archiver // optional
	chunkCfg  ChunkConfig
	uuidGen   UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance. archiver
// may be nil when no object storage is configured.
func NewDocumentService(
	companies CompanyRepositoryInterface,
	documents DocumentRepositoryInterface,
	embedder EmbeddingClient,
	index PassageIndex,
	archiver Archiver,
) *DocumentService {
	return &DocumentService{
		companies: companies,
		documents: documents,
		embedder:  embedder,
		index:     index,
		archiver:  archiver,
		chunkCfg:  DefaultChunkConfig(),
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// IngestDocumentInput represents the input for ingesting a document
type IngestDocumentInput struct {
	Company string
	Type    domain.DocumentType
	Title   string
	Content string
}

// Ingest stores a commitment document and makes its passages
// retrievable.
func (s *DocumentService) Ingest(ctx context.Context, input IngestDocumentInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Ingest", telemetry.SpanAttributes{
		Company:   input.Company,
		Operation: "ingest",
	})
	defer span.End()

	company, err := s.companies.GetByName(ctx, input.Company)
	if err != nil {
		return nil, err
	}

	doc := domain.NewDocument(s.uuidGen.NewString(), company.ID, input.Type, input.Title, input.Content, time.Now().UTC())
	if doc.Title == "" {
		doc.Title = string(input.Type)
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	texts := chunkPassages(doc.Content, s.chunkCfg)
	passages := make([]domain.Passage, 0, len(texts))
	for i, text := range texts {
		embedding, err := s.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to embed passage", err)
		}
		passages = append(passages, domain.Passage{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			CompanyID:  company.ID,
			Index:      i,
			Text:       text,
			Embedding:  embedding,
		})
	}
	doc.Passages = passages

	archiveKey := ""
	if s.archiver != nil {
		archiveKey = storage.ArchiveKey(company.ID, doc.ID)
		if err := s.archiver.PutDocument(ctx, archiveKey, "text/plain", []byte(doc.Content)); err != nil {
			// The archive is best-effort; the database copy is canonical.
			log.Printf("document archive failed for %s: %v", doc.ID, err)
			archiveKey = ""
		}
	}

	if err := s.documents.Create(ctx, doc, archiveKey); err != nil {
		return nil, err
	}
	if err := s.documents.CreatePassages(ctx, passages); err != nil {
		return nil, err
	}

	for _, p := range passages {
		if err := s.index.Upsert(p.ID, p.Embedding); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// ListByCompany returns a company's documents.
func (s *DocumentService) ListByCompany(ctx context.Context, companyName string) ([]*domain.Document, error) {
	company, err := s.companies.GetByName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	return s.documents.ListByCompany(ctx, company.ID)
}

// RebuildIndex loads every embedded passage into the in-memory index.
// Called on startup; returns the number of passages indexed.
func (s *DocumentService) RebuildIndex(ctx context.Context) (int, error) {
	passages, err := s.documents.AllPassages(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, p := range passages {
		if err := s.index.Upsert(p.ID, p.Embedding); err != nil {
			// Dimension drift between deployments; skip rather than abort.
			log.Printf("skipping passage %s during index rebuild: %v", p.ID, err)
			continue
		}
		indexed++
	}
	return indexed, nil
}
