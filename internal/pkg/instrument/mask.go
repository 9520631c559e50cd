package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const maskedValue = "***"

// Masker hides the values of sensitive keys in log attributes and JSON
// payloads. Key matching ignores case.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker builds a Masker for the given field names. Blank names are
// ignored.
func NewMasker(fields []string) Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return Masker{keys: keys}
}

// Empty reports whether the Masker has no keys to hide.
func (m Masker) Empty() bool { return len(m.keys) == 0 }

func (m Masker) sensitive(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Attr masks a single slog attribute, descending into groups, maps and
// JSON encoded strings.
func (m Masker) Attr(a slog.Attr) slog.Attr {
	if m.Empty() {
		return a
	}
	if m.sensitive(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.Attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s, ok := m.JSON([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.Value(v))
		case map[string]string:
			conv := make(map[string]any, len(v))
			for k, s := range v {
				conv[k] = s
			}
			a.Value = slog.AnyValue(m.Value(conv))
		case []byte:
			if s, ok := m.JSON(v); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}

	return a
}

// JSON masks a JSON object or array. ok is false when payload is not JSON.
func (m Masker) JSON(payload []byte) (masked string, ok bool) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", false
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return "", false
	}

	out, err := json.Marshal(m.Value(decoded))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// Value returns a copy of v with sensitive map keys masked at any depth.
func (m Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.sensitive(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}
