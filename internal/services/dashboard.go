package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"affilink/internal/models"
	"affilink/internal/repository"

	"golang.org/x/sync/errgroup"
)

// DashboardService loads fresh product and click snapshots and aggregates
// them. Nothing is cached between loads.
type DashboardService struct {
	repo      *repository.CatalogRepository
	logger    *slog.Logger
	telemetry *Telemetry
}

func NewDashboardService(repo *repository.CatalogRepository, logger *slog.Logger, telemetry *Telemetry) *DashboardService {
	return &DashboardService{
		repo:      repo,
		logger:    logger,
		telemetry: telemetry,
	}
}

func (s *DashboardService) Load(ctx context.Context, now time.Time) (Summary, error) {
	var (
		products []models.Product
		clicks   []models.Click
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.ListProductNames(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clicks, err = s.repo.ListClicks(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.telemetry.DashboardLoads.WithLabelValues("error").Inc()
		s.logger.Error("Failed to load dashboard data", "error", err)
		return Summary{}, fmt.Errorf("load dashboard: %w", err)
	}

	s.telemetry.DashboardLoads.WithLabelValues("ok").Inc()
	return Aggregate(products, clicks, now), nil
}
