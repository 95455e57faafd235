package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileFile overrides extraction profile tuning without code changes.
//
//	enum_policy: coerce
//	profiles:
//	  resume_parse:
//	    budgets: {resume: 8000}
//	    max_tokens: 2000
//	  question_gen:
//	    enum_policy:
//	      questions.difficulty: reject
type ProfileFile struct {
	EnumPolicy string                     `yaml:"enum_policy"`
	Profiles   map[string]ProfileOverride `yaml:"profiles"`
}

// ProfileOverride tunes one task. Nil pointers keep the built-in value.
type ProfileOverride struct {
	Budgets     map[string]int    `yaml:"budgets"`
	MaxTokens   *int              `yaml:"max_tokens"`
	Temperature *float64          `yaml:"temperature"`
	EnumPolicy  map[string]string `yaml:"enum_policy"`
}

// LoadProfileFile reads the profile overrides at path. An empty path yields no overrides.
func LoadProfileFile(path string) (ProfileFile, error) {
	if path == "" {
		return ProfileFile{}, nil
	}
	// #nosec G304 -- path comes from operator configuration
	content, err := os.ReadFile(path)
	if err != nil {
		return ProfileFile{}, fmt.Errorf("op=config.LoadProfileFile: %w", err)
	}
	return ParseProfileFile(content)
}

// ParseProfileFile decodes and validates profile overrides.
func ParseProfileFile(content []byte) (ProfileFile, error) {
	var pf ProfileFile
	if err := yaml.Unmarshal(content, &pf); err != nil {
		return ProfileFile{}, fmt.Errorf("op=config.ParseProfileFile: %w", err)
	}
	if err := validPolicy(pf.EnumPolicy); err != nil {
		return ProfileFile{}, err
	}
	for task, o := range pf.Profiles {
		for source, budget := range o.Budgets {
			if budget < 1 {
				return ProfileFile{}, fmt.Errorf("op=config.ParseProfileFile: %s budget %q must be positive", task, source)
			}
		}
		if o.MaxTokens != nil && *o.MaxTokens < 1 {
			return ProfileFile{}, fmt.Errorf("op=config.ParseProfileFile: %s max_tokens must be positive", task)
		}
		for _, p := range o.EnumPolicy {
			if err := validPolicy(p); err != nil {
				return ProfileFile{}, err
			}
		}
	}
	return pf, nil
}

func validPolicy(p string) error {
	switch p {
	case "", "coerce", "reject":
		return nil
	}
	return fmt.Errorf("op=config.ParseProfileFile: unknown enum policy %q", p)
}
