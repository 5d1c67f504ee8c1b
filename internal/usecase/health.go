package usecase

import (
	"context"
	"time"

	domrepo "MarketDash/internal/domain/repository"
	"MarketDash/pkg/cache"
	applogger "MarketDash/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	componentUp     = "up"
	componentDown   = "down"
)

type HealthReport struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
	Timestamp time.Time `json:"timestamp"`
}

// Healthy reports whether the service can serve requests. A cache outage
// only degrades it.
func (r HealthReport) Healthy() bool { return r.Status != StatusUnhealthy }

type HealthUseCase struct {
	db      domrepo.HealthChecker
	cache   cache.Service
	timeout time.Duration
	logger  *applogger.Logger
}

func NewHealthUseCase(db domrepo.HealthChecker, c cache.Service, logger *applogger.Logger) *HealthUseCase {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &HealthUseCase{db: db, cache: c, timeout: 2 * time.Second, logger: logger}
}

func (uc *HealthUseCase) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	rep := HealthReport{Status: StatusHealthy, Database: componentUp, Cache: componentUp, Timestamp: time.Now().UTC()}
	if err := uc.db.Health(ctx); err != nil {
		uc.logger.Error("health: database down", applogger.Error(err))
		rep.Database = componentDown
		rep.Status = StatusUnhealthy
	}
	if uc.cache != nil {
		if err := uc.cache.Ping(ctx); err != nil {
			uc.logger.Warn("health: cache down", applogger.Error(err))
			rep.Cache = componentDown
			if rep.Status == StatusHealthy {
				rep.Status = StatusDegraded
			}
		}
	}
	return rep
}
