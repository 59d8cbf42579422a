package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskTranscript_RedactsEmailAndPhone(t *testing.T) {
	s := NewService(Config{Enabled: true, PatternGroup: "pii"})

	in := "Please reach the clerk at clerk@viewroyal.ca or 250-555-0199 with questions."
	got := s.MaskTranscript(in)

	assert.NotContains(t, got, "clerk@viewroyal.ca")
	assert.NotContains(t, got, "250-555-0199")
	assert.Contains(t, got, "[EMAIL_REDACTED]")
	assert.Contains(t, got, "[PHONE_REDACTED]")
}

func TestMaskTranscript_Disabled(t *testing.T) {
	s := NewService(Config{Enabled: false, PatternGroup: "pii"})

	in := "Contact clerk@viewroyal.ca for more information."
	assert.Equal(t, in, s.MaskTranscript(in))
}

func TestMaskTranscript_UnknownGroupPassesThrough(t *testing.T) {
	s := NewService(Config{Enabled: true, PatternGroup: "does-not-exist"})

	in := "Contact clerk@viewroyal.ca for more information."
	assert.Equal(t, in, s.MaskTranscript(in))
}

func TestMaskTranscript_EmptyString(t *testing.T) {
	s := NewService(Config{Enabled: true, PatternGroup: "pii"})
	assert.Equal(t, "", s.MaskTranscript(""))
}
