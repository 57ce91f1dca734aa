package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

func newTestAlertService(repo *MockAlertRepository, broadcaster *MockBroadcaster) *AlertService {
	// Avoid wrapping a nil *MockBroadcaster in a non-nil Broadcaster
	// interface, which would defeat the service's nil-broadcaster guard.
	var b Broadcaster
	if broadcaster != nil {
		b = broadcaster
	}
	svc := NewAlertService(repo, b, AlertConfig{Cooldown: 5 * time.Minute})
	svc.uuidGen = NewMockUUIDGenerator("alert-1", "alert-2", "alert-3")
	return svc
}

func highResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:                "analysis-1",
		CompanyID:         "company-1",
		Level:             domain.ContradictionHigh,
		ConfidenceScore:   0.9,
		Analysis:          "greenwashing detected",
		KeyContradictions: []string{"pledged zero waste, dumping reported"},
		CreatedAt:         time.Now().UTC(),
	}
}

func TestAlertService_ClassifyResult(t *testing.T) {
	ctx := context.Background()

	t.Run("HIGH level always alerts", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)
		result := highResult()
		result.ConfidenceScore = 0.1 // confidence does not gate HIGH

		alert, err := svc.ClassifyResult(ctx, "TechCorp", result)
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, domain.SeverityHigh, alert.Level)
		assert.Equal(t, domain.AlertTypeContradiction, alert.Type)
		assert.Equal(t, "analysis-1", alert.SourceResultID)
		repo.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("MEDIUM alerts only at or above the confidence threshold", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)

		low := highResult()
		low.Level = domain.ContradictionMedium
		low.ConfidenceScore = 0.49
		alert, err := svc.ClassifyResult(ctx, "TechCorp", low)
		require.NoError(t, err)
		assert.Nil(t, alert)

		high := highResult()
		high.Level = domain.ContradictionMedium
		high.ConfidenceScore = 0.5
		alert, err = svc.ClassifyResult(ctx, "TechCorp", high)
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, domain.SeverityMedium, alert.Level)
	})

	t.Run("LOW and NONE never alert", func(t *testing.T) {
		repo := new(MockAlertRepository)
		svc := newTestAlertService(repo, nil)

		for _, level := range []domain.ContradictionLevel{domain.ContradictionNone, domain.ContradictionLow} {
			result := highResult()
			result.Level = level
			result.KeyContradictions = nil
			alert, err := svc.ClassifyResult(ctx, "TechCorp", result)
			require.NoError(t, err)
			assert.Nil(t, alert)
		}
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cool-down suppresses repeat alerts for the same company and tier", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)

		first, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		assert.Nil(t, second)

		repo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("different tiers do not share a cool-down window", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)

		first, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		require.NotNil(t, first)

		medium := highResult()
		medium.Level = domain.ContradictionMedium
		medium.ConfidenceScore = 0.8
		second, err := svc.ClassifyResult(ctx, "TechCorp", medium)
		require.NoError(t, err)
		require.NotNil(t, second)

		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("failed persistence does not hold the window", func(t *testing.T) {
		repo := new(MockAlertRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(assert.AnError).Once()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil).Once()

		svc := newTestAlertService(repo, nil)

		_, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.Error(t, err)

		alert, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		require.NotNil(t, alert)
	})

	t.Run("alert re-emits after the window elapses", func(t *testing.T) {
		repo := new(MockAlertRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)

		svc := newTestAlertService(repo, nil)
		now := time.Now()
		svc.cooldown.now = func() time.Time { return now }

		first, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		require.NotNil(t, first)

		svc.cooldown.now = func() time.Time { return now.Add(6 * time.Minute) }
		second, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		require.NotNil(t, second)

		repo.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestAlertService_ClassifyArticle(t *testing.T) {
	ctx := context.Background()

	article := func(severity domain.Severity) *domain.NewsArticle {
		return &domain.NewsArticle{
			ID:        "article-1",
			CompanyID: "company-1",
			Title:     "TechCorp fined for illegal dumping",
			Severity:  severity,
		}
	}

	t.Run("high severity news produces an alert", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)
		alert, err := svc.ClassifyArticle(ctx, "TechCorp", article(domain.SeverityHigh))
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, domain.AlertTypeNews, alert.Type)
		assert.Equal(t, "article-1", alert.SourceResultID)
	})

	t.Run("concurrent classifications for the same tier emit one alert", func(t *testing.T) {
		repo := new(MockAlertRepository)
		broadcaster := new(MockBroadcaster)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Alert")).
			Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
			Return(nil)
		broadcaster.On("AlertCreated", mock.AnythingOfType("*domain.Alert")).Return()

		svc := newTestAlertService(repo, broadcaster)
		svc.uuidGen = &DefaultUUIDGenerator{}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			emitted int
		)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				alert, err := svc.ClassifyArticle(ctx, "TechCorp", article(domain.SeverityHigh))
				assert.NoError(t, err)
				if alert != nil {
					mu.Lock()
					emitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, emitted)
		repo.AssertNumberOfCalls(t, "Create", 1)
		broadcaster.AssertNumberOfCalls(t, "AlertCreated", 1)
	})

	t.Run("lower severities never alert", func(t *testing.T) {
		repo := new(MockAlertRepository)
		svc := newTestAlertService(repo, nil)

		for _, severity := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium} {
			alert, err := svc.ClassifyArticle(ctx, "TechCorp", article(severity))
			require.NoError(t, err)
			assert.Nil(t, alert)
		}
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAlertService_RehydrateCooldown(t *testing.T) {
	ctx := context.Background()

	t.Run("recent persisted alert suppresses a new one after restart", func(t *testing.T) {
		repo := new(MockAlertRepository)
		repo.On("LastCreated", mock.Anything, "company-1", domain.SeverityLow).Return(time.Time{}, nil)
		repo.On("LastCreated", mock.Anything, "company-1", domain.SeverityMedium).Return(time.Time{}, nil)
		repo.On("LastCreated", mock.Anything, "company-1", domain.SeverityHigh).Return(time.Now().Add(-time.Minute), nil)

		svc := newTestAlertService(repo, nil)
		require.NoError(t, svc.RehydrateCooldown(ctx, []string{"company-1"}))

		alert, err := svc.ClassifyResult(ctx, "TechCorp", highResult())
		require.NoError(t, err)
		assert.Nil(t, alert)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
