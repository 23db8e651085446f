package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PredictionRequest is the property record sent to the prediction service.
// Every field is serialized, unset optional values as null.
type PredictionRequest struct {
	Postcode                *string  `json:"POSTCODE"`
	PropertyType            string   `json:"PROPERTYTYPE"`
	Duration                string   `json:"DURATION"`
	TotalFloorArea          *float64 `json:"TOTAL_FLOOR_AREA"`
	CurrentEnergyEfficiency *float64 `json:"CURRENT_ENERGY_EFFICIENCY"`
	NumberHabitableRooms    *float64 `json:"NUMBER_HABITABLE_ROOMS"`
	ConstructionAgeBand     string   `json:"CONSTRUCTION_AGE_BAND"`
	BuiltForm               string   `json:"BUILT_FORM"`
	Year                    *int     `json:"year"`
	OldNew                  *string  `json:"old_new"`
	CurrentEnergyRating     *string  `json:"CURRENT_ENERGY_RATING"`
}

// PredictionResponse is the successful answer of the prediction service
type PredictionResponse struct {
	PredictedPrice decimal.Decimal `json:"predicted_price"`
}

// DefaultPredictionRequest returns the record a fresh form starts with
func DefaultPredictionRequest() PredictionRequest {
	return PredictionRequest{
		PropertyType:        "T",
		Duration:            "F",
		ConstructionAgeBand: "England and Wales: 1967-1975",
		BuiltForm:           "Semi-Detached",
	}
}

// FieldValue returns the current value of a field as it is shown in an input.
// Unset values are returned as the empty string.
func (r *PredictionRequest) FieldValue(key string) string {
	switch key {
	case KeyPostcode:
		return stringValue(r.Postcode)
	case KeyPropertyType:
		return r.PropertyType
	case KeyDuration:
		return r.Duration
	case KeyTotalFloorArea:
		return floatValue(r.TotalFloorArea)
	case KeyEnergyEfficiency:
		return floatValue(r.CurrentEnergyEfficiency)
	case KeyHabitableRooms:
		return floatValue(r.NumberHabitableRooms)
	case KeyConstructionAgeBand:
		return r.ConstructionAgeBand
	case KeyBuiltForm:
		return r.BuiltForm
	case KeyYear:
		if r.Year == nil {
			return ""
		}
		return strconv.Itoa(*r.Year)
	case KeyOldNew:
		return stringValue(r.OldNew)
	case KeyEnergyRating:
		return stringValue(r.CurrentEnergyRating)
	}
	return ""
}

// Value implements driver.Valuer interface
func (r PredictionRequest) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface
func (r *PredictionRequest) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into PredictionRequest", value)
	}
}

// PredictionLog is one settled submission as written to the audit log
type PredictionLog struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	Request        PredictionRequest   `json:"request" db:"request"`
	PredictedPrice decimal.NullDecimal `json:"predicted_price" db:"predicted_price"`
	ErrorMessage   *string             `json:"error_message,omitempty" db:"error_message"`
	ResponseTimeMs int64               `json:"response_time_ms" db:"response_time_ms"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

// MarshalJSON writes predicted_price as a JSON number, or null for a failed prediction
func (l PredictionLog) MarshalJSON() ([]byte, error) {
	type plain PredictionLog
	out := struct {
		plain
		PredictedPrice *json.Number `json:"predicted_price"`
	}{plain: plain(l)}
	if l.PredictedPrice.Valid {
		n := json.Number(l.PredictedPrice.Decimal.String())
		out.PredictedPrice = &n
	}
	return json.Marshal(out)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
