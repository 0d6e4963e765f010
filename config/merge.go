package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Project != "" {
		result.Project = override.Project
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append(append([]string{}, base.Ignore...), override.Ignore...)
	}

	// Merge editor settings
	if override.Editor.InitialNotify {
		result.Editor.InitialNotify = true
	}
	if override.Editor.Watch != nil {
		result.Editor.Watch = override.Editor.Watch
	}
	if override.Editor.WatchDebounceMs != 0 {
		result.Editor.WatchDebounceMs = override.Editor.WatchDebounceMs
	}
	if override.Editor.Theme != "" {
		result.Editor.Theme = override.Editor.Theme
	}
	if override.Editor.ExtendedAttribute != "" {
		result.Editor.ExtendedAttribute = override.Editor.ExtendedAttribute
	}
	if len(override.Editor.Keys) > 0 {
		result.Editor.Keys = make(map[string][]string, len(base.Editor.Keys)+len(override.Editor.Keys))
		for k, v := range base.Editor.Keys {
			result.Editor.Keys[k] = v
		}
		for k, v := range override.Editor.Keys {
			result.Editor.Keys[k] = v
		}
	}

	// Extension sections are replaced wholesale
	if len(override.Extensions) > 0 {
		result.Extensions = make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for k, v := range base.Extensions {
			result.Extensions[k] = v
		}
		for k, v := range override.Extensions {
			result.Extensions[k] = v
		}
	}

	return &result
}
