package masking

import "log/slog"

// Config holds transcript masking settings, mirroring
// config.TranscriptMaskingDefaults.
type Config struct {
	Enabled      bool
	PatternGroup string
}

// Service applies PII masking to transcript text before it is sent to an
// LLM provider. Created once at application startup (singleton);
// thread-safe and stateless aside from its compiled patterns.
type Service struct {
	patterns map[string]*CompiledPattern
	cfg      Config
}

// NewService creates a masking service with every built-in pattern
// compiled eagerly.
func NewService(cfg Config) *Service {
	s := &Service{
		patterns: compileBuiltinPatterns(),
		cfg:      cfg,
	}

	slog.Info("masking service initialized",
		"compiled_patterns", len(s.patterns),
		"enabled", cfg.Enabled,
		"pattern_group", cfg.PatternGroup)

	return s
}

// MaskTranscript redacts PII from raw transcript text using the configured
// pattern group. Fails open: if the pattern group is unknown, the original
// text is returned rather than blocking the pipeline on a masking error,
// since a stalled meeting never gets published versus one with an
// occasional un-redacted phone number.
func (s *Service) MaskTranscript(text string) string {
	if !s.cfg.Enabled || text == "" {
		return text
	}

	patterns := resolveGroup(s.patterns, s.cfg.PatternGroup)
	if len(patterns) == 0 {
		slog.Warn("masking pattern group resolved to no patterns, passing text through unmasked",
			"pattern_group", s.cfg.PatternGroup, "error", unknownGroupError(s.cfg.PatternGroup))
		return text
	}

	masked := text
	for _, p := range patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
