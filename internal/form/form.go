package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"houseprice/internal/model"
	"houseprice/internal/service"
	"houseprice/internal/utils"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownField is returned by UpdateField for keys outside the record
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidChoice is returned when a closed-choice value is outside its domain
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrInvalidNumber is returned when a numeric input does not parse
	ErrInvalidNumber = errors.New("invalid number")
	// ErrDuplicateField is returned when one batch names the same field twice
	ErrDuplicateField = errors.New("field given more than once")
	// ErrSubmitInProgress is returned when Submit is called while a request is in flight
	ErrSubmitInProgress = errors.New("a prediction is already in progress")
)

// Status is the display state of the form
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSettled Status = "settled"
)

// defaultErrorMessage is shown when a failure carries no text of its own
const defaultErrorMessage = "Prediction failed"

// View is a snapshot of the form for rendering
type View struct {
	Status    Status                  `json:"status"`
	Request   model.PredictionRequest `json:"request"`
	Price     *decimal.Decimal        `json:"predicted_price"`
	PriceText string                  `json:"display,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// MarshalJSON writes predicted_price as a JSON number, matching the
// prediction service's own response
func (v View) MarshalJSON() ([]byte, error) {
	type plain View
	out := struct {
		plain
		Price *json.Number `json:"predicted_price"`
	}{plain: plain(v)}
	if v.Price != nil {
		n := json.Number(v.Price.String())
		out.Price = &n
	}
	return json.Marshal(out)
}

// Loading reports whether a request is in flight
func (v View) Loading() bool {
	return v.Status == StatusLoading
}

// Form holds the record being edited and the outcome of the last submission.
// It is safe for concurrent use; at most one submission is in flight.
type Form struct {
	mu        sync.Mutex
	predictor service.Predictor
	record    model.PredictionRequest
	status    Status
	price     *decimal.Decimal
	errMsg    string
}

// New creates a form holding the default record
func New(predictor service.Predictor) *Form {
	return &Form{
		predictor: predictor,
		record:    model.DefaultPredictionRequest(),
		status:    StatusIdle,
	}
}

// UpdateField merges one field's new value into the record.
// On error the record is left unchanged.
func (f *Form) UpdateField(key, value string) error {
	field, ok := model.LookupField(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return setField(&f.record, field, value)
}

// setField parses value for field and stores it in r.
// On error r is left unchanged.
func setField(r *model.PredictionRequest, field model.Field, value string) error {
	// Setters always store fresh pointers, so View copies never alias live state.
	value = strings.TrimSpace(value)

	switch field.Kind {
	case model.KindText:
		r.Postcode = optionalString(value)

	case model.KindNumber:
		n, err := parseNumber(field, value)
		if err != nil {
			return err
		}
		switch field.Key {
		case model.KeyTotalFloorArea:
			r.TotalFloorArea = n
		case model.KeyEnergyEfficiency:
			r.CurrentEnergyEfficiency = n
		case model.KeyHabitableRooms:
			r.NumberHabitableRooms = n
		}

	case model.KindInteger:
		n, err := parseInteger(field, value)
		if err != nil {
			return err
		}
		r.Year = n

	case model.KindChoice:
		if value == "" && field.Optional {
			setChoice(r, field.Key, nil)
			return nil
		}
		choice, ok := field.MatchChoice(value)
		if !ok {
			return fmt.Errorf("%w for %s: %q", ErrInvalidChoice, field.Label, value)
		}
		setChoice(r, field.Key, &choice.Value)
	}

	return nil
}

// Submit sends the current record to the predictor and settles the form.
// Previous result and error are cleared before the call. A Submit while
// another is in flight is refused with ErrSubmitInProgress and sends nothing.
// Prediction failures are reported through the returned View, never as an error.
func (f *Form) Submit(ctx context.Context) (View, error) {
	f.mu.Lock()
	if f.status == StatusLoading {
		v := f.viewLocked()
		f.mu.Unlock()
		return v, ErrSubmitInProgress
	}
	f.status = StatusLoading
	f.price = nil
	f.errMsg = ""
	req := f.record
	f.mu.Unlock()

	resp, err := f.predictor.Predict(ctx, &req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.price = nil
		f.errMsg = ErrorMessage(err)
	} else {
		price := resp.PredictedPrice
		f.price = &price
		f.errMsg = ""
	}
	f.status = StatusSettled

	return f.viewLocked(), nil
}

// Reset restores the default record and returns the form to Idle.
// A form with a request in flight is not reset.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusLoading {
		return ErrSubmitInProgress
	}
	f.record = model.DefaultPredictionRequest()
	f.status = StatusIdle
	f.price = nil
	f.errMsg = ""
	return nil
}

// View returns a snapshot of the form
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Form) viewLocked() View {
	v := View{
		Status:  f.status,
		Request: f.record,
		Error:   f.errMsg,
	}
	if f.price != nil {
		price := *f.price
		v.Price = &price
		v.PriceText = utils.FormatPrice(price)
	}
	return v
}

// ErrorMessage converts a prediction failure into the text shown to the user
func ErrorMessage(err error) string {
	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Error()
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return defaultErrorMessage
}

func parseNumber(field model.Field, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field.Label, value)
	}
	return &n, nil
}

func parseInteger(field model.Field, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field.Label, value)
	}
	return &n, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func setChoice(r *model.PredictionRequest, key string, value *string) {
	switch key {
	case model.KeyPropertyType:
		r.PropertyType = *value
	case model.KeyDuration:
		r.Duration = *value
	case model.KeyConstructionAgeBand:
		r.ConstructionAgeBand = *value
	case model.KeyBuiltForm:
		r.BuiltForm = *value
	case model.KeyOldNew:
		r.OldNew = value
	case model.KeyEnergyRating:
		r.CurrentEnergyRating = value
	}
}
