package model

import (
	"strings"

	"houseprice/internal/utils"
)

// Wire keys of the prediction request
const (
	KeyPostcode            = "POSTCODE"
	KeyPropertyType        = "PROPERTYTYPE"
	KeyDuration            = "DURATION"
	KeyTotalFloorArea      = "TOTAL_FLOOR_AREA"
	KeyEnergyEfficiency    = "CURRENT_ENERGY_EFFICIENCY"
	KeyHabitableRooms      = "NUMBER_HABITABLE_ROOMS"
	KeyConstructionAgeBand = "CONSTRUCTION_AGE_BAND"
	KeyBuiltForm           = "BUILT_FORM"
	KeyYear                = "year"
	KeyOldNew              = "old_new"
	KeyEnergyRating        = "CURRENT_ENERGY_RATING"
)

// FieldKind describes how a field's input is interpreted
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindNumber  FieldKind = "number"
	KindInteger FieldKind = "integer"
	KindChoice  FieldKind = "choice"
)

// Choice is one member of a closed domain
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of the prediction form
type Field struct {
	Key         string    `json:"key"`  // wire key
	Name        string    `json:"name"` // HTML input name
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Optional    bool      `json:"optional"`
	Placeholder string    `json:"placeholder,omitempty"`
	Choices     []Choice  `json:"choices,omitempty"`

	// Aliases maps normalized shorthand onto a choice value of this field
	Aliases map[string]string `json:"aliases,omitempty"`
}

// Fields lists every form field in display order
var Fields = []Field{
	{Key: KeyPostcode, Name: "postcode", Label: "Postcode", Kind: KindText, Optional: true, Placeholder: "e.g. B15 2TT"},
	{Key: KeyTotalFloorArea, Name: "floor_area", Label: "Floor Area (m²)", Kind: KindNumber, Optional: true},
	{Key: KeyEnergyEfficiency, Name: "energy_efficiency", Label: "Energy Efficiency (0–100)", Kind: KindNumber, Optional: true},
	{Key: KeyHabitableRooms, Name: "rooms", Label: "Habitable Rooms", Kind: KindNumber, Optional: true},
	{Key: KeyPropertyType, Name: "property_type", Label: "Property Type", Kind: KindChoice, Choices: []Choice{
		{Value: "D", Label: "Detached"},
		{Value: "S", Label: "Semi-Detached"},
		{Value: "T", Label: "Terraced"},
		{Value: "F", Label: "Flat"},
		{Value: "O", Label: "Other"},
	}, Aliases: map[string]string{
		"semi":           "S",
		"semidetached":   "S",
		"terrace":        "T",
		"terraced house": "T",
		"apartment":      "F",
		"maisonette":     "F",
	}},
	{Key: KeyDuration, Name: "tenure", Label: "Tenure", Kind: KindChoice, Choices: []Choice{
		{Value: "F", Label: "Freehold"},
		{Value: "L", Label: "Leasehold"},
	}},
	{Key: KeyConstructionAgeBand, Name: "age_band", Label: "Construction Age Band", Kind: KindChoice, Choices: []Choice{
		{Value: "England and Wales: before 1900", Label: "Before 1900"},
		{Value: "England and Wales: 1900-1929", Label: "1900–1929"},
		{Value: "England and Wales: 1930-1949", Label: "1930–1949"},
		{Value: "England and Wales: 1950-1966", Label: "1950–1966"},
		{Value: "England and Wales: 1967-1975", Label: "1967–1975"},
		{Value: "England and Wales: 1976-1982", Label: "1976–1982"},
		{Value: "England and Wales: 1983-1990", Label: "1983–1990"},
		{Value: "England and Wales: 1991-1995", Label: "1991–1995"},
		{Value: "England and Wales: 1996-2002", Label: "1996–2002"},
		{Value: "England and Wales: 2003-2006", Label: "2003–2006"},
		{Value: "England and Wales: 2007-2011", Label: "2007–2011"},
		{Value: "England and Wales: 2012 onwards", Label: "2012 onwards"},
	}, Aliases: map[string]string{
		"pre 1900": "England and Wales: before 1900",
		"2012+":    "England and Wales: 2012 onwards",
	}},
	{Key: KeyBuiltForm, Name: "built_form", Label: "Built Form", Kind: KindChoice, Choices: []Choice{
		{Value: "Detached", Label: "Detached"},
		{Value: "Semi-Detached", Label: "Semi-Detached"},
		{Value: "Mid-Terrace", Label: "Mid-Terrace"},
		{Value: "End-Terrace", Label: "End-Terrace"},
		{Value: "Enclosed Mid-Terrace", Label: "Enclosed Mid-Terrace"},
		{Value: "Enclosed End-Terrace", Label: "Enclosed End-Terrace"},
	}, Aliases: map[string]string{
		"semi":         "Semi-Detached",
		"semidetached": "Semi-Detached",
	}},
	{Key: KeyYear, Name: "year", Label: "Year", Kind: KindInteger, Optional: true, Placeholder: "e.g. 2024"},
	{Key: KeyOldNew, Name: "new_build", Label: "New Build", Kind: KindChoice, Optional: true, Choices: []Choice{
		{Value: "Y", Label: "New build"},
		{Value: "N", Label: "Established"},
	}, Aliases: map[string]string{
		"yes":   "Y",
		"true":  "Y",
		"new":   "Y",
		"no":    "N",
		"false": "N",
		"old":   "N",
	}},
	{Key: KeyEnergyRating, Name: "epc_rating", Label: "EPC Rating", Kind: KindChoice, Optional: true, Choices: []Choice{
		{Value: "A", Label: "A"},
		{Value: "B", Label: "B"},
		{Value: "C", Label: "C"},
		{Value: "D", Label: "D"},
		{Value: "E", Label: "E"},
		{Value: "F", Label: "F"},
		{Value: "G", Label: "G"},
	}},
}

// LookupField finds a field by wire key or input name, ignoring case
func LookupField(key string) (Field, bool) {
	key = strings.TrimSpace(key)
	for _, f := range Fields {
		if strings.EqualFold(f.Key, key) || strings.EqualFold(f.Name, key) {
			return f, true
		}
	}
	return Field{}, false
}

// MatchChoice resolves user input against the field's closed domain.
// The stored value, the display label and the field's own aliases are accepted.
func (f Field) MatchChoice(input string) (Choice, bool) {
	want := utils.NormalizeChoice(input)
	if want == "" {
		return Choice{}, false
	}
	for _, c := range f.Choices {
		if utils.NormalizeChoice(c.Value) == want || utils.NormalizeChoice(c.Label) == want {
			return c, true
		}
	}
	if value, ok := f.Aliases[want]; ok {
		for _, c := range f.Choices {
			if c.Value == value {
				return c, true
			}
		}
	}
	return Choice{}, false
}

// ChoiceLabel returns the display label for a stored choice value
func (f Field) ChoiceLabel(value string) string {
	for _, c := range f.Choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
