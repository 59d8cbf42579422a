// Package masking redacts personally identifying information from raw
// transcript text before it crosses the process boundary toward an LLM
// provider. Grounded on tarsy's pkg/masking regex-pattern idiom, stripped
// of the MCP-tool-result and Kubernetes-secret masking this pipeline has
// no use for.
package masking

import (
	"fmt"
	"log/slog"
	"regexp"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// BuiltinPattern is the uncompiled, built-in pattern definition shipped
// with the binary.
type BuiltinPattern struct {
	Pattern     string
	Replacement string
	Description string
}

// BuiltinPatternGroups maps a named group (as referenced by
// config.TranscriptMaskingDefaults.PatternGroup) to the built-in patterns
// it applies. "pii" is the only group shipped today; custom groups can be
// added here as new categories of sensitive transcript content emerge.
var BuiltinPatternGroups = map[string][]string{
	"pii": {"email", "phone", "sin"},
}

// BuiltinPatterns is the built-in, named regex pattern set.
var BuiltinPatterns = map[string]BuiltinPattern{
	"email": {
		Pattern:     `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		Replacement: "[EMAIL_REDACTED]",
		Description: "email addresses spoken or read aloud during public comment",
	},
	"phone": {
		Pattern:     `(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`,
		Replacement: "[PHONE_REDACTED]",
		Description: "North American phone numbers",
	},
	"sin": {
		Pattern:     `\b\d{3}[-\s]?\d{3}[-\s]?\d{3}\b`,
		Replacement: "[ID_REDACTED]",
		Description: "Canadian SIN / US SSN-shaped 9-digit sequences",
	},
}

// compileBuiltinPatterns compiles every built-in regex pattern. Invalid
// patterns are logged and skipped rather than failing startup.
func compileBuiltinPatterns() map[string]*CompiledPattern {
	compiled := make(map[string]*CompiledPattern, len(BuiltinPatterns))
	for name, p := range BuiltinPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			slog.Error("failed to compile built-in masking pattern, skipping", "pattern", name, "error", err)
			continue
		}
		compiled[name] = &CompiledPattern{
			Name:        name,
			Regex:       re,
			Replacement: p.Replacement,
			Description: p.Description,
		}
	}
	return compiled
}

// resolveGroup expands a pattern group name into its compiled patterns.
func resolveGroup(compiled map[string]*CompiledPattern, groupName string) []*CompiledPattern {
	names, ok := BuiltinPatternGroups[groupName]
	if !ok {
		return nil
	}
	resolved := make([]*CompiledPattern, 0, len(names))
	for _, name := range names {
		if cp, ok := compiled[name]; ok {
			resolved = append(resolved, cp)
		}
	}
	return resolved
}

func unknownGroupError(groupName string) error {
	return fmt.Errorf("unknown masking pattern group: %s", groupName)
}
