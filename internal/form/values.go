package form

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"houseprice/internal/model"

	"gopkg.in/yaml.v3"
)

// ApplyValues sets several fields as one batch. Keys may be wire keys or
// input names. Unknown keys and a field named twice are rejected, and the
// record only changes if every value is accepted.
func (f *Form) ApplyValues(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var unknown []string
	given := make(map[string]string, len(values))
	for _, key := range keys {
		field, ok := model.LookupField(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if prev, ok := given[field.Key]; ok {
			return fmt.Errorf("%w: %s and %s both set %s", ErrDuplicateField, prev, key, field.Key)
		}
		given[field.Key] = key
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.record
	for _, field := range model.Fields {
		key, ok := given[field.Key]
		if !ok {
			continue
		}
		if err := setField(&next, field, values[key]); err != nil {
			return err
		}
	}
	f.record = next
	return nil
}

// StringifyValues converts decoded JSON or YAML scalars into input strings.
// null becomes the empty string, which clears optional fields.
func StringifyValues(raw map[string]any) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for key, v := range raw {
		s, err := stringify(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		values[key] = s
	}
	return values, nil
}

// LoadValuesFile reads a YAML (or JSON) mapping of field to value
func LoadValuesFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return StringifyValues(decoded)
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if t {
			return "Y", nil
		}
		return "N", nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
