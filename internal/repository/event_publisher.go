package repository

import (
	"context"
	"time"

	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	pkgkafka "MarketDash/pkg/kafka"
)

// SignalEvent is the wire form of a generated signal.
type SignalEvent struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Timeframe  string    `json:"timeframe"`
	SignalType string    `json:"signal_type"`
	Strength   float64   `json:"strength"`
	Price      float64   `json:"current_price"`
	Target     *float64  `json:"price_target,omitempty"`
	StopLoss   *float64  `json:"stop_loss,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PredictionEvent is the wire form of a generated prediction.
type PredictionEvent struct {
	ID             int64     `json:"id"`
	Symbol         string    `json:"symbol"`
	Timeframe      string    `json:"timeframe"`
	Model          string    `json:"model"`
	Horizon        string    `json:"horizon"`
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// KafkaPublisher implements EventPublisher for Kafka, keyed by symbol.
type KafkaPublisher struct {
	producer         *pkgkafka.Producer
	signalsTopic     string
	predictionsTopic string
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *pkgkafka.Producer, signalsTopic, predictionsTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, signalsTopic: signalsTopic, predictionsTopic: predictionsTopic}
}

func (p *KafkaPublisher) PublishSignal(ctx context.Context, s *models.TradingSignal) error {
	return p.producer.Publish(ctx, p.signalsTopic, []byte(s.Symbol), NewSignalEvent(s))
}

func (p *KafkaPublisher) PublishPrediction(ctx context.Context, pr *models.Prediction) error {
	return p.producer.Publish(ctx, p.predictionsTopic, []byte(pr.Symbol), NewPredictionEvent(pr))
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func NewSignalEvent(s *models.TradingSignal) SignalEvent {
	return SignalEvent{
		ID:         s.ID,
		Symbol:     s.Symbol,
		Timeframe:  string(s.Timeframe),
		SignalType: string(s.SignalType),
		Strength:   s.Strength,
		Price:      s.CurrentPrice,
		Target:     s.PriceTarget,
		StopLoss:   s.StopLoss,
		CreatedAt:  s.CreatedAt,
	}
}

func NewPredictionEvent(p *models.Prediction) PredictionEvent {
	return PredictionEvent{
		ID:             p.ID,
		Symbol:         p.Symbol,
		Timeframe:      string(p.Timeframe),
		Model:          string(p.ModelUsed),
		Horizon:        string(p.TimeHorizon),
		CurrentPrice:   p.CurrentPrice,
		PredictedPrice: p.PredictedPrice,
		Confidence:     p.ConfidenceScore,
		CreatedAt:      p.CreatedAt,
	}
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSignal(context.Context, *models.TradingSignal) error { return nil }
func (NoopPublisher) PublishPrediction(context.Context, *models.Prediction) error { return nil }
func (NoopPublisher) Close() error { return nil }
