package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/config"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// Profile is the per-task configuration of the pipeline: how to prompt, what
// shape to expect and how to answer without the generation service.
type Profile struct {
	Task        domain.TaskKind
	System      string
	MaxTokens   int
	Temperature float64
	Schema      Schema
	JSON        *JSONSchema
	// Budgets caps each named source in characters.
	Budgets map[string]int

	// Validate rejects requests that violate the caller contract.
	Validate func(req domain.ExtractionRequest) error
	// Sources lists the texts the prompt is built from.
	Sources func(req domain.ExtractionRequest) []Source
	// Render places bounded sources into the user prompt.
	Render func(req domain.ExtractionRequest, in map[string]string) string
	// SkipAI reports requests not worth a generation call.
	SkipAI func(req domain.ExtractionRequest) bool
	// Tune adjusts the call for a specific request, e.g. a larger output budget.
	Tune func(req domain.ExtractionRequest, c *Call)
	// Heuristic is a deterministic, pure fallback.
	Heuristic func(req domain.ExtractionRequest) (any, error)
	// Finalize derives request-dependent fields from a normalized result of any tier.
	Finalize func(req domain.ExtractionRequest, fields map[string]any) map[string]any
}

// call builds the gateway submission for req.
func (p *Profile) call(req domain.ExtractionRequest) Call {
	c := Call{
		Task:        p.Task,
		System:      p.System,
		Sources:     p.Sources(req),
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Schema:      p.JSON,
		Render:      func(in map[string]string) string { return p.Render(req, in) },
	}
	for i := range c.Sources {
		if b, ok := p.Budgets[c.Sources[i].Name]; ok {
			c.Sources[i].Budget = b
		}
	}
	if p.Tune != nil {
		p.Tune(req, &c)
	}
	return c
}

func (p *Profile) finalize(req domain.ExtractionRequest, fields map[string]any) map[string]any {
	if p.Finalize == nil {
		return fields
	}
	return p.Finalize(req, fields)
}

// Apply overlays operator overrides onto the profile and returns the per-field enum policy overrides.
func (p *Profile) Apply(o config.ProfileOverride) map[string]EnumMode {
	if len(o.Budgets) > 0 {
		merged := make(map[string]int, len(p.Budgets))
		for k, v := range p.Budgets {
			merged[k] = v
		}
		for k, v := range o.Budgets {
			merged[k] = v
		}
		p.Budgets = merged
	}
	if o.MaxTokens != nil {
		p.MaxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		p.Temperature = *o.Temperature
	}
	if len(o.EnumPolicy) == 0 {
		return nil
	}
	modes := make(map[string]EnumMode, len(o.EnumPolicy))
	for path, m := range o.EnumPolicy {
		modes[path] = ParseEnumMode(m)
	}
	return modes
}

// toValue converts a typed heuristic result into the generic decoded form the normalizer walks.
func toValue(v any) (any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("op=extraction.toValue: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("op=extraction.toValue: %w", err)
	}
	return out, nil
}
