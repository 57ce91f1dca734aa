package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// CompanyLister defines the interface for enumerating monitored companies
type CompanyLister interface {
	List(ctx context.Context) ([]*domain.Company, error)
}

// NewsReader defines the interface for reading recent severe articles
type NewsReader interface {
	RecentBySeverity(ctx context.Context, companyID string, severity domain.Severity, since time.Time) ([]*domain.NewsArticle, error)
}

// AlertClassifier defines the interface for turning articles into alerts
type AlertClassifier interface {
	ClassifyArticle(ctx context.Context, companyName string, article *domain.NewsArticle) (*domain.Alert, error)
}

// NewsSweeper walks the company roster and pushes high-severity
// articles ingested since the last pass through the alert classifier.
// It catches articles whose alerts were suppressed or lost, for
// example during a restart.
type NewsSweeper struct {
	companies CompanyLister
	news      NewsReader
	alerts    AlertClassifier

	mu        sync.Mutex
	lastSweep time.Time
}

// NewNewsSweeper creates a new NewsSweeper instance. The first sweep
// looks back over the given window.
func NewNewsSweeper(companies CompanyLister, news NewsReader, alerts AlertClassifier, lookback time.Duration) *NewsSweeper {
	if lookback <= 0 {
		lookback = time.Hour
	}
	return &NewsSweeper{
		companies: companies,
		news:      news,
		alerts:    alerts,
		lastSweep: time.Now().UTC().Add(-lookback),
	}
}

// Sweep implements the Sweeper interface
func (s *NewsSweeper) Sweep(ctx context.Context) error {
	s.mu.Lock()
	since := s.lastSweep
	s.mu.Unlock()
	started := time.Now().UTC()

	companies, err := s.companies.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	classified := 0
	for _, company := range companies {
		articles, err := s.news.RecentBySeverity(ctx, company.ID, domain.SeverityHigh, since)
		if err != nil {
			log.Printf("Error reading news for %s during sweep: %v", company.Name, err)
			continue
		}
		for _, article := range articles {
			if _, err := s.alerts.ClassifyArticle(ctx, company.Name, article); err != nil {
				log.Printf("Error classifying article %s during sweep: %v", article.ID, err)
				continue
			}
			classified++
		}
	}

	s.mu.Lock()
	s.lastSweep = started
	s.mu.Unlock()

	if classified > 0 {
		log.Printf("Sweep classified %d high severity articles", classified)
	}
	return nil
}
