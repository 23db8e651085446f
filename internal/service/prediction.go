package service

import (
	"context"
	"log"
	"time"

	"houseprice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Predictor produces a price for a property record
type Predictor interface {
	Predict(ctx context.Context, req *model.PredictionRequest) (*model.PredictionResponse, error)
}

// PredictionLogger persists settled predictions
type PredictionLogger interface {
	LogPrediction(ctx context.Context, entry *model.PredictionLog) error
}

// PredictionService runs predictions and records each outcome in the audit log
type PredictionService struct {
	predictor Predictor
	logger    PredictionLogger
}

// NewPredictionService creates a new prediction service.
// logger may be nil, in which case nothing is recorded.
func NewPredictionService(predictor Predictor, logger PredictionLogger) *PredictionService {
	return &PredictionService{
		predictor: predictor,
		logger:    logger,
	}
}

// Predict forwards the request to the predictor and logs the outcome.
// The audit write never affects the returned result.
func (s *PredictionService) Predict(ctx context.Context, req *model.PredictionRequest) (*model.PredictionResponse, error) {
	startTime := time.Now()

	resp, err := s.predictor.Predict(ctx, req)

	if s.logger != nil {
		entry := &model.PredictionLog{
			ID:             uuid.New(),
			Request:        *req,
			ResponseTimeMs: time.Since(startTime).Milliseconds(),
			CreatedAt:      startTime.UTC(),
		}
		if err != nil {
			msg := err.Error()
			entry.ErrorMessage = &msg
		} else {
			entry.PredictedPrice = decimal.NullDecimal{Decimal: resp.PredictedPrice, Valid: true}
		}

		// Log prediction (non-blocking)
		go func() {
			if logErr := s.logger.LogPrediction(context.Background(), entry); logErr != nil {
				log.Printf("Failed to log prediction %s: %v", entry.ID, logErr)
			}
		}()
	}

	return resp, err
}
