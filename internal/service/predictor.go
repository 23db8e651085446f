package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"houseprice/internal/config"
	"houseprice/internal/model"

	"github.com/shopspring/decimal"
)

// PredictionClient talks to the remote price prediction service
type PredictionClient struct {
	config     *config.PredictionConfig
	httpClient *http.Client
}

// NewPredictionClient creates a new prediction service client
func NewPredictionClient(cfg *config.PredictionConfig) *PredictionClient {
	return &PredictionClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the configured service base URL
func (c *PredictionClient) BaseURL() string {
	return c.config.APIURL
}

// Predict posts the request to /predict and returns the parsed price.
// Exactly one HTTP request is made; failures are never retried.
func (c *PredictionClient) Predict(ctx context.Context, req *model.PredictionRequest) (*model.PredictionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", c.config.APIURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Prediction service rejected request with status %d", resp.StatusCode)
		return nil, &ServiceError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return ParsePredictionResponse(body)
}

// Health probes GET /health on the prediction service
func (c *PredictionClient) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.config.APIURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ServiceError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ParsePredictionResponse validates and decodes a success body.
// The body must be a single JSON object whose predicted_price is a number.
func ParsePredictionResponse(body []byte) (*model.PredictionResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrMalformedResponse)
	}

	value, ok := raw["predicted_price"]
	if !ok {
		return nil, fmt.Errorf("%w: missing predicted_price", ErrMalformedResponse)
	}
	number, ok := value.(json.Number)
	if !ok {
		return nil, fmt.Errorf("%w: predicted_price is not a number", ErrMalformedResponse)
	}

	price, err := decimal.NewFromString(number.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &model.PredictionResponse{PredictedPrice: price}, nil
}
