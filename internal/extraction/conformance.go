package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// JSONSchema is a task's output contract reflected from its Go type.
// Doc is sent to providers that accept structured output; the compiled form
// re-validates normalized results.
type JSONSchema struct {
	Name     string
	Doc      map[string]any
	compiled *gojsonschema.Schema
}

// ReflectSchema builds the JSON Schema of v. It panics on reflection errors because
// schemas are fixed at build time.
func ReflectSchema(name string, v any) *JSONSchema {
	r := &jsonschema.Reflector{AllowAdditionalProperties: false, DoNotReference: true}
	s := r.Reflect(v)
	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("extraction: marshal schema %s: %v", name, err))
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		panic(fmt.Sprintf("extraction: decode schema %s: %v", name, err))
	}
	delete(doc, "$schema")
	delete(doc, "$id")
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("extraction: compile schema %s: %v", name, err))
	}
	return &JSONSchema{Name: name, Doc: doc, compiled: compiled}
}

// Validate checks a normalized value against the schema.
func (s *JSONSchema) Validate(fields map[string]any) error {
	res, err := s.compiled.Validate(gojsonschema.NewGoLoader(fields))
	if err != nil {
		return &domain.SchemaViolationError{Field: "(root)", Reason: err.Error()}
	}
	if res.Valid() {
		return nil
	}
	errs := res.Errors()
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Description())
	}
	return &domain.SchemaViolationError{Field: errs[0].Field(), Reason: strings.Join(msgs, "; ")}
}
