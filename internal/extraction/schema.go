// Package extraction implements the AI-assisted structured extraction pipeline:
// prompt budgeting, output normalization against fixed schemas and the
// AI -> heuristic -> empty fallback chain shared by every task profile.
package extraction

// FieldType is the value type a schema field normalizes to.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeNumber
	TypeBool
	TypeStringList
	TypeObject
	TypeObjectList
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeStringList:
		return "string list"
	case TypeObject:
		return "object"
	case TypeObjectList:
		return "object list"
	}
	return "unknown"
}

// Field describes one key of a task schema.
type Field struct {
	Name     string
	Type     FieldType
	Required bool

	// Enum restricts string values; Fallback is used when the value is outside the set.
	Enum     []string
	Fallback string

	// Min and Max clamp numeric values when Bounded is set.
	Bounded  bool
	Min, Max float64

	// MaxItems caps list lengths, MaxLen caps string lengths in runes. Zero means unlimited.
	MaxItems int
	MaxLen   int

	// Default replaces a missing optional scalar. Lists and objects always default to empty.
	Default any

	// Fields describes the keys of an object or of each object list element.
	Fields []Field
}

// Schema is the fixed output shape of one task.
type Schema struct {
	Fields []Field
	// ListRoot names the field a bare top-level JSON array is wrapped into.
	ListRoot string
}

// Defaults returns the all-defaults value of the schema.
func (s Schema) Defaults() map[string]any {
	return defaultObject(s.Fields)
}

// Lookup returns the field at a dotted path such as "score_breakdown.formatting".
func (s Schema) Lookup(path string) (Field, bool) {
	fields := s.Fields
	var found Field
	for _, part := range splitPath(path) {
		ok := false
		for _, f := range fields {
			if f.Name == part {
				found, fields, ok = f, f.Fields, true
				break
			}
		}
		if !ok {
			return Field{}, false
		}
	}
	return found, found.Name != ""
}

func defaultObject(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = defaultValue(f)
	}
	return out
}

func defaultValue(f Field) any {
	switch f.Type {
	case TypeStringList:
		return []string{}
	case TypeObjectList:
		return []map[string]any{}
	case TypeObject:
		return defaultObject(f.Fields)
	}
	if f.Default != nil {
		return f.Default
	}
	switch f.Type {
	case TypeInt:
		if f.Bounded {
			return int(f.Min)
		}
		return 0
	case TypeNumber:
		if f.Bounded {
			return f.Min
		}
		return 0.0
	case TypeBool:
		return false
	}
	if len(f.Enum) > 0 && f.Fallback != "" {
		return f.Fallback
	}
	return ""
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}

// Field constructors keep profile schemas compact.

func str(name string) Field { return Field{Name: name, Type: TypeString} }

func strCap(name string, maxLen int) Field {
	return Field{Name: name, Type: TypeString, MaxLen: maxLen}
}

func strList(name string, maxItems int) Field {
	return Field{Name: name, Type: TypeStringList, MaxItems: maxItems}
}

func enum(name, fallback string, members ...string) Field {
	return Field{Name: name, Type: TypeString, Enum: members, Fallback: fallback}
}

func score(name string, lo, hi float64) Field {
	return Field{Name: name, Type: TypeInt, Bounded: true, Min: lo, Max: hi}
}

func object(name string, fields ...Field) Field {
	return Field{Name: name, Type: TypeObject, Fields: fields}
}

func objectList(name string, maxItems int, fields ...Field) Field {
	return Field{Name: name, Type: TypeObjectList, MaxItems: maxItems, Fields: fields}
}

func required(f Field) Field {
	f.Required = true
	return f
}

func withDefault(f Field, v any) Field {
	f.Default = v
	return f
}
