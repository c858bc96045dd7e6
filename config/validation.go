package config

import (
	"fmt"
	"regexp"

	"github.com/grovetools/extender/errors"
)

var profileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.@-]*$`)

// Validate checks the merged configuration for semantic problems the schema
// cannot express: duplicate names, dangling links and competing defaults.
func (c *Config) Validate() error {
	names := make(map[string]bool, len(c.Profiles))
	defaults := make(map[string]string)

	for _, p := range c.Profiles {
		if !profileNameRegex.MatchString(p.Name) {
			return errors.ConfigInvalid(fmt.Sprintf("invalid profile name '%s'", p.Name)).
				WithDetail("profile", p.Name)
		}
		if p.Type == "" {
			return errors.ConfigInvalid(fmt.Sprintf("profile '%s' has no type", p.Name)).
				WithDetail("profile", p.Name)
		}
		if names[p.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate profile name '%s'", p.Name)).
				WithDetail("profile", p.Name)
		}
		names[p.Name] = true

		if p.Default {
			if other, ok := defaults[p.Type]; ok {
				return errors.ConfigInvalid(fmt.Sprintf("profiles '%s' and '%s' are both default for type '%s'", other, p.Name, p.Type)).
					WithDetail("type", p.Type)
			}
			defaults[p.Type] = p.Name
		}
	}

	for _, p := range c.Profiles {
		for linkType, target := range p.Links {
			if linkType == "" {
				return errors.ConfigInvalid(fmt.Sprintf("profile '%s' has a link with an empty type", p.Name)).
					WithDetail("profile", p.Name)
			}
			if target == p.Name {
				return errors.ConfigInvalid(fmt.Sprintf("profile '%s' links to itself", p.Name)).
					WithDetail("profile", p.Name)
			}
			if !names[target] {
				return errors.ConfigInvalid(fmt.Sprintf("profile '%s' links %s to unknown profile '%s'", p.Name, linkType, target)).
					WithDetail("profile", p.Name).
					WithDetail("link", target)
			}
		}
	}

	if c.Watch != nil && c.Watch.DebounceMs < 0 {
		return errors.ConfigInvalid("watch.debounce_ms cannot be negative")
	}

	return nil
}
