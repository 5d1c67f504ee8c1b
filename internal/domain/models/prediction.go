package models

import "time"

// ModelKind tags the model that produced a prediction.
type ModelKind string

const (
	ModelSequence ModelKind = "sequence"
	ModelEnsemble ModelKind = "ensemble"
	ModelKernel   ModelKind = "kernel"
)

// ModelKinds lists every available model.
var ModelKinds = []ModelKind{ModelSequence, ModelEnsemble, ModelKernel}

// Horizon is how far ahead a prediction looks.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Bars is the number of bars ahead the horizon predicts.
func (h Horizon) Bars() int {
	switch h {
	case HorizonMedium:
		return 5
	case HorizonLong:
		return 10
	default:
		return 1
	}
}

// Prediction is an append-only record of a model forecast.
type Prediction struct {
	ID              int64     `json:"id" db:"id"`
	Symbol          string    `json:"symbol" db:"symbol"`
	Timeframe       Timeframe `json:"timeframe" db:"timeframe"`
	PredictedPrice  float64   `json:"predicted_price" db:"predicted_price"`
	CurrentPrice    float64   `json:"current_price" db:"current_price"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	TimeHorizon     Horizon   `json:"time_horizon" db:"time_horizon"`
	ModelUsed       ModelKind `json:"model_used" db:"model_used"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Synthetic bool `json:"synthetic,omitempty" db:"-"`
}

// ModelPerformance is the hold-out evaluation of one model.
type ModelPerformance struct {
	Model               ModelKind `json:"model"`
	MSE                 float64   `json:"mse"`
	MAE                 float64   `json:"mae"`
	DirectionalAccuracy float64   `json:"directional_accuracy"`
	Confidence          float64   `json:"confidence"`
	TrainRows           int       `json:"train_rows"`
	ValidationRows      int       `json:"validation_rows"`
}

// PerformanceReport compares all models on the same series.
type PerformanceReport struct {
	Symbol    string             `json:"symbol"`
	Timeframe Timeframe          `json:"timeframe"`
	Horizon   Horizon            `json:"horizon"`
	Best      ModelKind          `json:"best_model"`
	Models    []ModelPerformance `json:"models"`
	Synthetic bool               `json:"synthetic,omitempty"`
}

// Confidence trends over stored predictions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// ConfidenceAnalysis summarizes the confidence of recently stored
// predictions, newest first in Recent.
type ConfidenceAnalysis struct {
	Symbol           string       `json:"symbol"`
	Timeframe        Timeframe    `json:"timeframe"`
	TotalPredictions int          `json:"total_predictions"`
	AvgConfidence    float64      `json:"avg_confidence"`
	MinConfidence    float64      `json:"min_confidence"`
	MaxConfidence    float64      `json:"max_confidence"`
	Trend            string       `json:"confidence_trend"`
	Recent           []Prediction `json:"recent_predictions"`
	GeneratedAt      time.Time    `json:"timestamp"`
}
