package config

// mergeRenderers merges built-in and user-defined renderer configurations.
// User-defined renderers override built-ins with the same ID.
func mergeRenderers(builtin, user map[string]RendererConfig) map[string]*RendererConfig {
	result := make(map[string]*RendererConfig, len(builtin)+len(user))
	for id, r := range builtin {
		rc := r
		result[id] = &rc
	}
	for id, r := range user {
		rc := r
		result[id] = &rc
	}
	return result
}

// mergeRoutes merges built-in and user-defined renderer route configurations.
func mergeRoutes(builtin, user map[string]RouteConfig) map[string]*RouteConfig {
	result := make(map[string]*RouteConfig, len(builtin)+len(user))
	for id, r := range builtin {
		rc := r
		result[id] = &rc
	}
	for id, r := range user {
		rc := r
		result[id] = &rc
	}
	return result
}

// mergeLLMProviders merges built-in and user-defined LLM provider configurations.
func mergeLLMProviders(builtin, user map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig, len(builtin)+len(user))
	for name, p := range builtin {
		pc := p
		result[name] = &pc
	}
	for name, p := range user {
		pc := p
		result[name] = &pc
	}
	return result
}
