package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	result.Profiles = mergeProfiles(base.Profiles, override.Profiles)
	result.Views = mergeViews(base.Views, override.Views)
	result.Watch = mergeWatch(base.Watch, override.Watch)

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for key, value := range base.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{})
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			// Otherwise just replace
			merged[key] = value
		}
		result.Extensions = merged
	}

	result.sources = append(append([]string(nil), base.sources...), override.sources...)
	return &result
}

// mergeProfiles replaces base profiles that share a name with an override
// profile and appends the rest, keeping base order.
func mergeProfiles(base, override []ProfileConfig) []ProfileConfig {
	if len(override) == 0 {
		return base
	}

	result := make([]ProfileConfig, 0, len(base)+len(override))
	index := make(map[string]int, len(base))
	for _, p := range base {
		index[p.Name] = len(result)
		result = append(result, p)
	}
	for _, p := range override {
		if i, ok := index[p.Name]; ok {
			result[i] = p
			continue
		}
		index[p.Name] = len(result)
		result = append(result, p)
	}
	return result
}

func mergeViews(base, override *ViewsConfig) *ViewsConfig {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}

	result := *base
	if override.Dataset != nil {
		result.Dataset = override.Dataset
	}
	if override.Filesystem != nil {
		result.Filesystem = override.Filesystem
	}
	if override.Job != nil {
		result.Job = override.Job
	}
	return &result
}

func mergeWatch(base, override *WatchConfig) *WatchConfig {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}

	result := *base
	if override.Enabled != nil {
		result.Enabled = override.Enabled
	}
	if override.DebounceMs > 0 {
		result.DebounceMs = override.DebounceMs
	}
	return &result
}
