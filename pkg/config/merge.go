package config

import "dario.cat/mergo"

// mergeMunicipalities merges a built-in municipality list with user-defined
// overrides. User-defined municipalities override built-in ones with the
// same slug; this mirrors tarsy's mergeAgents/mergeChains "user overrides
// built-in" idiom even though, in practice, the built-in set ships empty
// and every municipality is user-defined.
func mergeMunicipalities(builtin []MunicipalityConfig, user []MunicipalityConfig) []MunicipalityConfig {
	byslug := make(map[string]MunicipalityConfig, len(builtin)+len(user))
	order := make([]string, 0, len(builtin)+len(user))

	for _, m := range builtin {
		if _, exists := byslug[m.Slug]; !exists {
			order = append(order, m.Slug)
		}
		byslug[m.Slug] = m
	}
	for _, m := range user {
		if _, exists := byslug[m.Slug]; !exists {
			order = append(order, m.Slug)
		}
		byslug[m.Slug] = m
	}

	result := make([]MunicipalityConfig, 0, len(order))
	for _, slug := range order {
		result = append(result, byslug[slug])
	}
	return result
}

// mergePipelineConfig merges user-provided pipeline tunables over the
// built-in defaults. Non-zero user fields override the default; unset
// fields fall through to the default. Mirrors tarsy's queue-config merge
// via dario.cat/mergo.
func mergePipelineConfig(user *PipelineConfig) (PipelineConfig, error) {
	merged := DefaultPipelineConfig()
	if user == nil {
		return merged, nil
	}
	if err := mergo.Merge(&merged, user, mergo.WithOverride); err != nil {
		return PipelineConfig{}, err
	}
	return merged, nil
}
