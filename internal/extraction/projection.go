package extraction

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/teamflow/sprintbot/internal/logging"
)

// Projection is the loosely-typed task returned by the extraction service.
// Every field is optional and values may arrive as the wrong JSON type, so
// accessors read defensively: an absent or unparseable value is skipped
// (logged at warn) rather than failing the whole operation.
type Projection map[string]any

// String returns the string value of a field, or "" when absent.
func (p Projection) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		logging.WithComponent("extraction").Warn("Skipping non-string field",
			slog.String("field", key))
		return ""
	}
	return s
}

// Int returns the integer value of a field. ok is false when the field is
// absent or cannot be read as an integer.
func (p Projection) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return int(i), true
		}
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i, true
		}
	}
	logging.WithComponent("extraction").Warn("Skipping unparseable numeric field",
		slog.String("field", key))
	return 0, false
}

// Int64 returns the int64 value of a field, used for entity references.
func (p Projection) Int64(key string) (int64, bool) {
	i, ok := p.Int(key)
	return int64(i), ok
}

// Float returns the float value of a field. ok is false when the field is
// absent or cannot be read as a number.
func (p Projection) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err == nil {
			return f, true
		}
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f, true
		}
	}
	logging.WithComponent("extraction").Warn("Skipping unparseable numeric field",
		slog.String("field", key))
	return 0, false
}

// Date returns the YYYY-MM-DD value of a field. ok is false when the field
// is absent or malformed.
func (p Projection) Date(key string) (time.Time, bool) {
	s := p.String(key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		logging.WithComponent("extraction").Warn("Skipping malformed date field",
			slog.String("field", key), slog.String("value", s))
		return time.Time{}, false
	}
	return t, true
}

// Warnings returns the warnings array, if the service included one.
func (p Projection) Warnings() []string {
	v, ok := p["warnings"]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var warnings []string
	for _, w := range raw {
		if s, ok := w.(string); ok {
			warnings = append(warnings, s)
		}
	}
	return warnings
}
