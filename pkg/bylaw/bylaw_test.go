package bylaw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMetadata(t *testing.T) {
	meta, ok := extractMetadata("Zoning Amendment Bylaw No. 1160, 2023.pdf")
	assert.True(t, ok)
	assert.Equal(t, "Bylaw 1160", meta.Number)
	assert.Equal(t, "Zoning Amendment Bylaw No. 1160, 2023", meta.Title)
}

func TestExtractMetadata_NoNumberFails(t *testing.T) {
	_, ok := extractMetadata("General Policy.pdf")
	assert.False(t, ok)
}

func TestChunkText_ShortTextOneChunk(t *testing.T) {
	chunks := chunkText("a short bylaw clause well past twenty characters", 1000, 200)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].charStart)
}

func TestChunkText_FiltersNoiseChunks(t *testing.T) {
	chunks := chunkText("too short", 1000, 200)
	assert.Empty(t, chunks)
}

func TestChunkText_OverlapsAndBreaksOnNewline(t *testing.T) {
	// Build text long enough to force a second window, with a newline
	// placed so the break-search finds it inside the 70% backoff zone.
	para := strings.Repeat("x", 750) + "\n" + strings.Repeat("y", 400)
	chunks := chunkText(para, 1000, 200)
	if assert.GreaterOrEqual(t, len(chunks), 2) {
		assert.True(t, strings.HasSuffix(chunks[0].text, strings.Repeat("x", 750)))
		assert.Less(t, chunks[1].charStart, chunks[0].charEnd)
	}
}

func TestExtractBylawNum(t *testing.T) {
	assert.Equal(t, "1160", extractBylawNum("Rezoning Bylaw No. 1160"))
	assert.Equal(t, "", extractBylawNum("General Business"))
}

func TestExtractBylawNum_AmendmentPrefersNewerBylaw(t *testing.T) {
	got := extractBylawNum("Bylaw 900 Amendment Bylaw No. 1101")
	assert.Equal(t, "1101", got)
}
