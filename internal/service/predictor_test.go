package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"houseprice/internal/config"
	"houseprice/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*PredictionClient, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewPredictionClient(&config.PredictionConfig{APIURL: server.URL}), &calls
}

func TestPredictionClient_Predict(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any

	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotContentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"predicted_price": 212500}`))
	})

	area := 85.0
	req := model.DefaultPredictionRequest()
	req.TotalFloorArea = &area

	resp, err := client.Predict(context.Background(), &req)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if resp.PredictedPrice.String() != "212500" {
		t.Errorf("PredictedPrice = %s, want 212500", resp.PredictedPrice)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("Made %d requests, want 1", atomic.LoadInt32(calls))
	}
	if gotMethod != http.MethodPost || gotPath != "/predict" || gotContentType != "application/json" {
		t.Errorf("Got %s %s (%s)", gotMethod, gotPath, gotContentType)
	}

	if len(gotBody) != 11 {
		t.Errorf("Body has %d keys, want 11: %v", len(gotBody), gotBody)
	}
	want := map[string]any{
		"POSTCODE":                  nil,
		"PROPERTYTYPE":              "T",
		"DURATION":                  "F",
		"TOTAL_FLOOR_AREA":          float64(85),
		"CURRENT_ENERGY_EFFICIENCY": nil,
		"NUMBER_HABITABLE_ROOMS":    nil,
		"CONSTRUCTION_AGE_BAND":     "England and Wales: 1967-1975",
		"BUILT_FORM":                "Semi-Detached",
		"year":                      nil,
		"old_new":                   nil,
		"CURRENT_ENERGY_RATING":     nil,
	}
	for key, value := range want {
		got, ok := gotBody[key]
		if !ok {
			t.Errorf("Body is missing %s", key)
			continue
		}
		if got != value {
			t.Errorf("%s = %v, want %v", key, got, value)
		}
	}
}

func TestPredictionClient_PredictFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		malformed  bool
	}{
		{name: "Rejection with body", status: 422, body: "invalid postcode", wantStatus: 422, wantMsg: "invalid postcode"},
		{name: "Server error without body", status: 500, body: "", wantStatus: 500, wantMsg: "prediction failed with status 500"},
		{name: "Missing price", status: 200, body: `{"price": 1}`, malformed: true},
		{name: "Price as string", status: 200, body: `{"predicted_price": "212500"}`, malformed: true},
		{name: "Null price", status: 200, body: `{"predicted_price": null}`, malformed: true},
		{name: "Not JSON", status: 200, body: `<html>`, malformed: true},
		{name: "Trailing garbage", status: 200, body: `{"predicted_price": 1} xyz`, malformed: true},
		{name: "Two objects", status: 200, body: `{"predicted_price": 1}{"predicted_price": 2}`, malformed: true},
		{name: "Array body", status: 200, body: `[{"predicted_price": 1}]`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			req := model.DefaultPredictionRequest()
			resp, err := client.Predict(context.Background(), &req)
			if err == nil {
				t.Fatalf("Predict() = %v, want error", resp)
			}
			if atomic.LoadInt32(calls) != 1 {
				t.Errorf("Made %d requests, want exactly 1", atomic.LoadInt32(calls))
			}

			if tt.malformed {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("Predict() error = %v, want ErrMalformedResponse", err)
				}
				return
			}

			var serviceErr *ServiceError
			if !errors.As(err, &serviceErr) {
				t.Fatalf("Predict() error = %T, want *ServiceError", err)
			}
			if serviceErr.StatusCode != tt.wantStatus || serviceErr.Error() != tt.wantMsg {
				t.Errorf("ServiceError = %d %q, want %d %q", serviceErr.StatusCode, serviceErr.Error(), tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestPredictionClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewPredictionClient(&config.PredictionConfig{APIURL: url})
	req := model.DefaultPredictionRequest()
	_, err := client.Predict(context.Background(), &req)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Predict() error = %v, want *TransportError", err)
	}
	if transportErr.Unwrap() == nil {
		t.Error("Expected the underlying error to be kept")
	}
}

func TestPredictionClient_Health(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}

	healthy.Store(false)
	err := client.Health(context.Background())
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Health() error = %v, want 503 ServiceError", err)
	}
}

func TestParsePredictionResponse(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"predicted_price": 350000}`, "350000"},
		{`{"predicted_price": 1234.56, "model": "xgb"}`, "1234.56"},
		{`{"predicted_price": 2.5e5}`, "250000"},
		{"{\"predicted_price\": 99}\n", "99"},
	}

	for _, tt := range tests {
		resp, err := ParsePredictionResponse([]byte(tt.body))
		if err != nil {
			t.Errorf("ParsePredictionResponse(%s) error = %v", tt.body, err)
			continue
		}
		if resp.PredictedPrice.String() != tt.want {
			t.Errorf("ParsePredictionResponse(%s) = %s, want %s", tt.body, resp.PredictedPrice, tt.want)
		}
	}
}
