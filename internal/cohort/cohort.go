// Package cohort loads externally authored location-grouping definitions.
package cohort

import (
	"errors"
	"fmt"
	"os"

	"github.com/rentfold/propsnap/schema"
	"gopkg.in/yaml.v3"
)

// ErrBadDefinition indicates a cohort file that parsed but fails validation.
var ErrBadDefinition = errors.New("bad cohort definition")

// file is the on-disk shape of a cohort definitions document.
type file struct {
	Cohorts []schema.CohortDefinition `yaml:"cohorts"`
}

// Load reads and validates cohort definitions from a YAML file. The file
// is the source of truth; the store only ever mirrors it.
func Load(path string) ([]schema.CohortDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cohort file: %w", err)
	}

	var doc file
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse cohort file %q: %w", path, err)
	}
	if err := validate(doc.Cohorts); err != nil {
		return nil, err
	}
	return doc.Cohorts, nil
}

// validate enforces unique ids and well-formed members.
func validate(defs []schema.CohortDefinition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return fmt.Errorf("%w: cohort with name %q has no id", ErrBadDefinition, def.Name)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: duplicate cohort id %q", ErrBadDefinition, def.ID)
		}
		seen[def.ID] = struct{}{}

		memberSeen := make(map[string]struct{}, len(def.Members))
		for _, m := range def.Members {
			if m.Key == "" {
				return fmt.Errorf("%w: cohort %q has a member with no key", ErrBadDefinition, def.ID)
			}
			if _, dup := memberSeen[m.Key]; dup {
				return fmt.Errorf("%w: cohort %q lists member %q twice", ErrBadDefinition, def.ID, m.Key)
			}
			memberSeen[m.Key] = struct{}{}
		}
	}
	return nil
}
