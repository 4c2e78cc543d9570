package payload

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mealforge/mealforge-go/pkg/apperror"
)

const (
	KindAny Kind = iota
	KindObject
	KindList
	KindString
	KindNumber
	KindBool
)

type (
	// Kind is the expected runtime kind of an extracted payload value.
	Kind int

	// Document is a decoded JSON response body.
	Document map[string]any
)

const envelopeKey = "data"

// Decode parses a raw response body into a Document. An empty or
// non-object body is a validation failure: the server contract always wraps
// payloads in an object envelope.
func Decode(body []byte) (Document, error) {
	if len(body) == 0 {
		return nil, apperror.NewValidation("empty response body", nil)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperror.NewValidation(fmt.Sprintf("malformed response body: %v", err), nil)
	}

	return doc, nil
}

// Extract returns the innermost payload of doc, unwrapping any number of
// nested "data" envelopes, then descending through the given entity keys
// (for payloads keyed as data.user, data.recipe and so on). It fails with a
// validation error if the payload is absent at any level or if want does not
// match the runtime kind of the result.
//
// The backend has shipped both single- and double-wrapped envelopes, so the
// unwrapping is depth-agnostic on purpose.
func Extract(doc Document, want Kind, entityKeys ...string) (any, error) {
	if doc == nil {
		return nil, apperror.NewValidation("missing response payload", nil)
	}

	var value any = map[string]any(doc)
	for {
		obj, ok := value.(map[string]any)
		if !ok {
			break
		}
		inner, ok := obj[envelopeKey]
		if !ok {
			break
		}
		if inner == nil {
			return nil, apperror.NewValidation("missing response payload", nil)
		}
		value = inner
	}

	for _, key := range entityKeys {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("response payload has no %q field", key), nil)
		}
		inner, ok := obj[key]
		if !ok || inner == nil {
			return nil, apperror.NewValidation(fmt.Sprintf("response payload has no %q field", key), nil)
		}
		value = inner
	}

	if !matchesKind(value, want) {
		return nil, apperror.NewValidation(
			fmt.Sprintf("response payload has unexpected kind, want %s", want),
			nil,
		)
	}

	return value, nil
}

func matchesKind(value any, want Kind) bool {
	switch want {
	case KindAny:
		return true
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindList:
		_, ok := value.([]any)
		return ok
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch value.(type) {
		case float64, json.Number:
			return true
		}
		return false
	case KindBool:
		_, ok := value.(bool)
		return ok
	default:
		return false
	}
}

var kindLabels = map[Kind]string{
	KindAny:    "any",
	KindObject: "object",
	KindList:   "list",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
}

func (k Kind) String() string {
	label, ok := kindLabels[k]
	if !ok {
		return "any"
	}
	return label
}

// String coerces v to a string. Any non-nil value is stringified; nil
// returns the fallback. Never panics.
func String(v any, fallback string) string {
	switch value := v.(type) {
	case nil:
		return fallback
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

// Int coerces v to an int, parsing numeric strings. Anything else returns
// the fallback.
func Int(v any, fallback int) int {
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return int(i)
		}
		return fallback
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
		return fallback
	default:
		return fallback
	}
}

// Float coerces v to a float64, parsing numeric strings. Anything else
// returns the fallback.
func Float(v any, fallback float64) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return fallback
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}

// Bool returns v if it is a bool, else the fallback.
func Bool(v any, fallback bool) bool {
	if value, ok := v.(bool); ok {
		return value
	}
	return fallback
}

// List returns v if it is a list, else the fallback.
func List(v any, fallback []any) []any {
	if value, ok := v.([]any); ok {
		return value
	}
	return fallback
}

// RequireFields fails with a single validation error naming every field of
// obj that is absent, nil, or an empty string. Field order follows the
// requested names, not the map.
func RequireFields(obj map[string]any, fieldNames ...string) error {
	var missing []string
	for _, name := range fieldNames {
		value, ok := obj[name]
		if !ok || value == nil {
			missing = append(missing, name)
			continue
		}
		if str, isStr := value.(string); isStr && strings.TrimSpace(str) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	fields := make(map[string]string, len(missing))
	for _, name := range missing {
		fields[name] = "required"
	}

	return apperror.NewValidation(
		fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		fields,
	)
}
