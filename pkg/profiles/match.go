package profiles

import (
	"fmt"

	"github.com/moby/patternmatcher"
)

// MatchNames returns the profiles whose names match patterns. Patterns use
// glob syntax and a leading "!" excludes. An empty pattern list matches
// everything.
func MatchNames(list []*Profile, patterns []string) ([]*Profile, error) {
	if len(patterns) == 0 {
		return list, nil
	}

	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid profile pattern: %w", err)
	}

	var out []*Profile
	for _, p := range list {
		ok, err := pm.MatchesOrParentMatches(p.Name)
		if err != nil {
			return nil, fmt.Errorf("matching profile '%s': %w", p.Name, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
