package prediction

import (
	"context"
	"fmt"

	"MarketDash/internal/domain/models"
	"MarketDash/internal/services/features"

	"github.com/shopspring/decimal"
)

type Config struct {
	DefaultModel models.ModelKind
	Trees        int
	TreeDepth    int
	Seed         int64
}

// Service routes requests to the configured models.
type Service struct {
	models       map[models.ModelKind]PriceModel
	defaultModel models.ModelKind
}

func NewService(cfg Config) *Service {
	s := &Service{
		models: map[models.ModelKind]PriceModel{},
	}
	s.Register(NewSequenceModel())
	s.Register(NewEnsembleModel(cfg.Trees, cfg.TreeDepth, cfg.Seed))
	s.Register(NewKernelModel())

	s.defaultModel = cfg.DefaultModel
	if _, ok := s.models[s.defaultModel]; !ok {
		s.defaultModel = models.ModelEnsemble
	}
	return s
}

// Register adds or replaces a model.
func (s *Service) Register(m PriceModel) {
	s.models[m.Kind()] = m
}

func (s *Service) DefaultModel() models.ModelKind { return s.defaultModel }

// Predict forecasts the close horizon bars after the latest candle. An
// empty kind selects the default model.
func (s *Service) Predict(ctx context.Context, kind models.ModelKind, symbol string, tf models.Timeframe, horizon models.Horizon, candles []models.Candle) (*models.Prediction, error) {
	if kind == "" {
		kind = s.defaultModel
	}
	m, ok := s.models[kind]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", kind)
	}

	set, err := features.Build(candles, horizon.Bars())
	if err != nil {
		return nil, err
	}
	out, err := m.Predict(ctx, set)
	if err != nil {
		return nil, err
	}

	return &models.Prediction{
		Symbol:          symbol,
		Timeframe:       tf,
		PredictedPrice:  roundTo(set.LastClose*(1+out.Return), 2),
		CurrentPrice:    roundTo(set.LastClose, 2),
		ConfidenceScore: roundTo(out.Confidence, 4),
		TimeHorizon:     horizon,
		ModelUsed:       kind,
		Synthetic:       models.AnySynthetic(candles),
	}, nil
}

// Evaluate scores every model on the same hold-out split. Nothing is persisted.
func (s *Service) Evaluate(ctx context.Context, symbol string, tf models.Timeframe, horizon models.Horizon, candles []models.Candle) (*models.PerformanceReport, error) {
	set, err := features.Build(candles, horizon.Bars())
	if err != nil {
		return nil, err
	}

	report := &models.PerformanceReport{
		Symbol:    symbol,
		Timeframe: tf,
		Horizon:   horizon,
		Synthetic: models.AnySynthetic(candles),
	}
	bestConf := -1.0
	for _, kind := range models.ModelKinds {
		m, ok := s.models[kind]
		if !ok {
			continue
		}
		out, err := m.Predict(ctx, set)
		if err != nil {
			return nil, err
		}
		perf := out.Metrics
		perf.MSE = roundTo(perf.MSE, 8)
		perf.MAE = roundTo(perf.MAE, 6)
		perf.DirectionalAccuracy = roundTo(perf.DirectionalAccuracy, 4)
		perf.Confidence = roundTo(perf.Confidence, 4)
		report.Models = append(report.Models, perf)
		if perf.Confidence > bestConf {
			bestConf = perf.Confidence
			report.Best = kind
		}
	}
	return report, nil
}

func roundTo(v float64, places int32) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
