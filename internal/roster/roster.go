// Package roster loads engineer profiles.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/prdflow/pkg/assign"
)

// Load reads an engineer list from path (JSON, or YAML for .yml/.yaml),
// trims whitespace and validates it. Entries keep file order.
func Load(path string) (assign.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engineer profiles: %w", err)
	}

	var r assign.Roster
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse engineer profiles YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse engineer profiles JSON: %w", err)
		}
	}

	r = Normalize(r)
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engineer profiles in %s: %w", path, err)
	}
	return r, nil
}

// Normalize trims identity, role and skill text.
func Normalize(r assign.Roster) assign.Roster {
	out := make(assign.Roster, len(r))
	for i, e := range r {
		out[i] = assign.Engineer{
			ID:     strings.TrimSpace(e.ID),
			Role:   strings.TrimSpace(e.Role),
			Skills: strings.TrimSpace(e.Skills),
		}
	}
	return out
}

// RoleCounts tallies engineers per role, for reporting. Empty roles count
// as "unspecified".
func RoleCounts(r assign.Roster) map[string]int {
	counts := make(map[string]int)
	for _, e := range r {
		role := e.Role
		if role == "" {
			role = "unspecified"
		}
		counts[role]++
	}
	return counts
}
