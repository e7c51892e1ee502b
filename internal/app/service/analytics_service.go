package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

type AnalyticsService interface {
	RecordView(ctx context.Context, productID string) error
	ViewCounts(ctx context.Context) map[string]int
	// TopProducts ranks products by views, highest first, ties by product ID.
	TopProducts(ctx context.Context, limit int) []model.ProductViews
	// Compact drops view logs older than olderThan and returns how many.
	Compact(ctx context.Context, olderThan time.Duration) (int, error)
}

type analyticsService struct {
	viewLogs    *repository.Collection[model.ViewLog]
	productRepo repository.ProductRepository
}

func NewAnalyticsService(viewLogs *repository.Collection[model.ViewLog], productRepo repository.ProductRepository) AnalyticsService {
	return &analyticsService{
		viewLogs:    viewLogs,
		productRepo: productRepo,
	}
}

func (s *analyticsService) RecordView(ctx context.Context, productID string) error {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	return s.viewLogs.Mutate(ctx, func(logs []model.ViewLog) ([]model.ViewLog, error) {
		return append(logs, model.ViewLog{ProductID: productID, Timestamp: time.Now().UTC()}), nil
	})
}

func (s *analyticsService) ViewCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int)
	for _, l := range s.viewLogs.All() {
		counts[l.ProductID]++
	}
	return counts
}

func (s *analyticsService) TopProducts(ctx context.Context, limit int) []model.ProductViews {
	counts := s.ViewCounts(ctx)

	ranked := make([]model.ProductViews, 0, len(counts))
	for id, n := range counts {
		pv := model.ProductViews{ProductID: id, Views: n}
		if p, err := s.productRepo.FindByID(id); err == nil {
			pv.Name = p.Name
		}
		ranked = append(ranked, pv)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Views != ranked[j].Views {
			return ranked[i].Views > ranked[j].Views
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (s *analyticsService) Compact(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var dropped int
	err := s.viewLogs.Mutate(ctx, func(logs []model.ViewLog) ([]model.ViewLog, error) {
		kept := logs[:0]
		for _, l := range logs {
			if l.Timestamp.Before(cutoff) {
				dropped++
				continue
			}
			kept = append(kept, l)
		}
		return kept, nil
	})

	logger.Info("View logs compacted", map[string]interface{}{
		"dropped": dropped,
		"cutoff":  cutoff,
	})
	return dropped, err
}
