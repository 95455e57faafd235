package extraction

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// EnumMode decides what happens to an enumerated value outside its allowed set.
type EnumMode string

const (
	// EnumCoerce replaces the value with the field's fallback member.
	EnumCoerce EnumMode = "coerce"
	// EnumReject fails the enclosing object with a SchemaViolationError.
	EnumReject EnumMode = "reject"
)

// ParseEnumMode maps a config string to an EnumMode, defaulting to EnumCoerce.
func ParseEnumMode(s string) EnumMode {
	if EnumMode(strings.ToLower(strings.TrimSpace(s))) == EnumReject {
		return EnumReject
	}
	return EnumCoerce
}

// Policy tunes normalization. Overrides are keyed by dotted field path relative to the task root.
type Policy struct {
	Enum          EnumMode
	EnumOverrides map[string]EnumMode
}

func (p Policy) enumMode(path string) EnumMode {
	if m, ok := p.EnumOverrides[path]; ok {
		return m
	}
	if p.Enum == "" {
		return EnumCoerce
	}
	return p.Enum
}

// Normalizer turns decoded model output into a value conforming to a schema.
type Normalizer struct {
	Policy Policy
}

// NormalizeRaw parses raw text and normalizes it against s.
func (n Normalizer) NormalizeRaw(raw string, s Schema) (map[string]any, error) {
	v, err := parseRaw(raw, s.ListRoot != "")
	if err != nil {
		return nil, err
	}
	return n.Normalize(v, s)
}

// Normalize walks schema s over the decoded value v.
func (n Normalizer) Normalize(v any, s Schema) (map[string]any, error) {
	if list, ok := v.([]any); ok && s.ListRoot != "" {
		v = map[string]any{s.ListRoot: list}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &domain.MalformedOutputError{Reason: fmt.Sprintf("expected a JSON object, got %T", v)}
	}
	return n.object("", obj, s.Fields)
}

func (n Normalizer) object(prefix string, obj map[string]any, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		raw, present := obj[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, &domain.SchemaViolationError{Field: path, Reason: "missing required field"}
			}
			out[f.Name] = defaultValue(f)
			continue
		}
		val, err := n.value(path, raw, f)
		if err != nil {
			if f.Required || (len(f.Enum) > 0 && n.Policy.enumMode(path) == EnumReject) {
				return nil, err
			}
			val = defaultValue(f)
		}
		out[f.Name] = val
	}
	return out, nil
}

func (n Normalizer) value(path string, raw any, f Field) (any, error) {
	switch f.Type {
	case TypeString:
		s, ok := coerceString(raw)
		if !ok {
			return nil, typeViolation(path, f, raw)
		}
		s = strings.TrimSpace(s)
		if len(f.Enum) > 0 {
			return n.enumValue(path, s, f)
		}
		return ellipsize(s, f.MaxLen), nil
	case TypeInt:
		x, ok := coerceNumber(raw)
		if !ok {
			return nil, typeViolation(path, f, raw)
		}
		return int(clamp(math.Round(x), f)), nil
	case TypeNumber:
		x, ok := coerceNumber(raw)
		if !ok {
			return nil, typeViolation(path, f, raw)
		}
		return clamp(x, f), nil
	case TypeBool:
		b, ok := coerceBool(raw)
		if !ok {
			return nil, typeViolation(path, f, raw)
		}
		return b, nil
	case TypeStringList:
		return stringList(path, raw, f)
	case TypeObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, typeViolation(path, f, raw)
		}
		return n.object(path, obj, f.Fields)
	case TypeObjectList:
		return n.objectList(path, raw, f)
	}
	return nil, &domain.SchemaViolationError{Field: path, Reason: "unsupported field type"}
}

func (n Normalizer) enumValue(path, s string, f Field) (any, error) {
	want := canonicalEnum(s)
	for _, m := range f.Enum {
		if canonicalEnum(m) == want {
			return m, nil
		}
	}
	if n.Policy.enumMode(path) == EnumReject || f.Fallback == "" {
		return nil, &domain.SchemaViolationError{Field: path, Reason: fmt.Sprintf("value %q not in %v", s, f.Enum)}
	}
	return f.Fallback, nil
}

func (n Normalizer) objectList(path string, raw any, f Field) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		if obj, isObj := raw.(map[string]any); isObj {
			items = []any{obj}
		} else {
			return nil, typeViolation(path, f, raw)
		}
	}
	out := make([]map[string]any, 0, len(items))
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		v, err := n.object(fmt.Sprintf("%s[%d]", path, i), obj, f.Fields)
		if err != nil {
			// one bad element does not discard the rest of the list
			continue
		}
		out = append(out, v)
		if f.MaxItems > 0 && len(out) == f.MaxItems {
			break
		}
	}
	return out, nil
}

func stringList(path string, raw any, f Field) (any, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case string:
		items = []any{v}
	default:
		return nil, typeViolation(path, f, raw)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := coerceString(it)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if f.MaxItems > 0 && len(out) == f.MaxItems {
			break
		}
	}
	return out, nil
}

func typeViolation(path string, f Field, raw any) error {
	return &domain.SchemaViolationError{Field: path, Reason: fmt.Sprintf("cannot coerce %T to %s", raw, f.Type)}
}

func coerceString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func coerceNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	}
	return false, false
}

func clamp(x float64, f Field) float64 {
	if !f.Bounded {
		return x
	}
	return math.Max(f.Min, math.Min(f.Max, x))
}

func canonicalEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
