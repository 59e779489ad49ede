package detect

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a custom recognizer rules file:
//
//	recognizers:
//	  - entity: EMPLOYEE_ID
//	    pattern: 'E-\d{6}'
//	    score: 0.9
//	    languages: [en]
type ruleFile struct {
	Recognizers []ruleSpec `yaml:"recognizers"`
}

type ruleSpec struct {
	Entity    string   `yaml:"entity"`
	Pattern   string   `yaml:"pattern"`
	Score     float64  `yaml:"score"`
	Languages []string `yaml:"languages"`
}

// LoadRules reads custom recognizers from a YAML file. Every rule must
// carry an entity name and a valid pattern; a bad rule fails the whole
// load rather than being silently dropped.
func LoadRules(path string) ([]Recognizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	recognizers := make([]Recognizer, 0, len(rf.Recognizers))
	for i, spec := range rf.Recognizers {
		if spec.Entity == "" {
			return nil, fmt.Errorf("rule %d: entity name cannot be empty", i)
		}
		if spec.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty", i, spec.Entity)
		}

		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, spec.Entity, err)
		}

		score := spec.Score
		if score == 0 {
			score = 0.5
		}
		if score < 0 || score > 1 {
			return nil, fmt.Errorf("rule %d (%s): score must be within [0, 1], got %v", i, spec.Entity, spec.Score)
		}

		recognizers = append(recognizers, Recognizer{
			Entity:    spec.Entity,
			Pattern:   re,
			Score:     score,
			Languages: spec.Languages,
		})
	}

	return recognizers, nil
}
