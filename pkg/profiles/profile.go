// Package profiles holds connection profiles and the process-wide cache the
// extender refreshes.
package profiles

import (
	"fmt"
	"sort"

	"github.com/grovetools/extender/config"
	"github.com/mitchellh/mapstructure"
)

// Profile is a named connection profile. Profiles are read-only once
// loaded into a Cache.
type Profile struct {
	Name       string
	Type       string
	Default    bool
	Properties map[string]interface{}
	// Links maps a profile type to the name of the linked profile of that type.
	Links map[string]string
	// Source is the config file the profile was loaded from, if known.
	Source string
}

// LinkedName returns the name of the profile linked under profileType.
func (p *Profile) LinkedName(profileType string) (string, bool) {
	name, ok := p.Links[profileType]
	return name, ok && name != ""
}

// LinkTypes returns the linked profile types in sorted order.
func (p *Profile) LinkTypes() []string {
	types := make([]string, 0, len(p.Links))
	for t := range p.Links {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Decode decodes the profile properties into out, which must be a pointer.
// Fields are matched by their yaml tag and scalar types are converted
// loosely, so a port given as "10443" decodes into an int field.
func (p *Profile) Decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(p.Properties); err != nil {
		return fmt.Errorf("failed to decode properties of profile '%s': %w", p.Name, err)
	}
	return nil
}

// FromConfig converts configured profiles into cache entries. Properties
// and links are copied so later edits to cfg do not leak into the cache.
func FromConfig(cfg *config.Config) []*Profile {
	if cfg == nil {
		return nil
	}

	source := ""
	if sources := cfg.Sources(); len(sources) > 0 {
		source = sources[len(sources)-1]
	}

	out := make([]*Profile, 0, len(cfg.Profiles))
	for _, pc := range cfg.Profiles {
		p := &Profile{
			Name:       pc.Name,
			Type:       pc.Type,
			Default:    pc.Default,
			Properties: make(map[string]interface{}, len(pc.Properties)),
			Links:      make(map[string]string, len(pc.Links)),
			Source:     source,
		}
		for k, v := range pc.Properties {
			p.Properties[k] = v
		}
		for k, v := range pc.Links {
			p.Links[k] = v
		}
		out = append(out, p)
	}
	return out
}
