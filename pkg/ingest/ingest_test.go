package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	assert.Equal(t, "Planned", deriveStatus(future, false, false))
	assert.Equal(t, "Occurred", deriveStatus(past, false, false))
	assert.Equal(t, "Occurred", deriveStatus(past, false, true))
	assert.Equal(t, "Completed", deriveStatus(past, true, true))
}

func TestMergeStatus(t *testing.T) {
	assert.Equal(t, "Occurred", mergeStatus("", "Occurred"))
	assert.Equal(t, "Completed", mergeStatus("Completed", "Occurred"))
	assert.Equal(t, "Occurred", mergeStatus("Planned", "Occurred"))
	assert.Equal(t, "Completed", mergeStatus("Occurred", "Completed"))
}

func TestMapTypeToOrg(t *testing.T) {
	name, class := MapTypeToOrg("Public Hearing")
	assert.Equal(t, "Council", name)
	assert.Equal(t, "Council", class)

	name, class = MapTypeToOrg("Committee of the Whole")
	assert.Equal(t, "Committee of the Whole", name)
	assert.Equal(t, "Committee", class)

	name, class = MapTypeToOrg("Something Unmapped")
	assert.Equal(t, "Council", name)
	assert.Equal(t, "Council", class)
}

func TestExtractIdentifierFromText(t *testing.T) {
	assert.Equal(t, "Bylaw 1160", extractIdentifierFromText("Rezoning Bylaw No. 1160"))
	assert.Equal(t, "REZ 2025-01", extractIdentifierFromText("REZ 2025-01 - 258 Helmcken Road"))
	assert.Equal(t, "", extractIdentifierFromText("General Business"))
}

func TestExtractIdentifierFromText_AmendmentPrefersNewerBylaw(t *testing.T) {
	got := extractIdentifierFromText("Bylaw 900 Amendment Bylaw No. 1101")
	assert.Equal(t, "Bylaw 1101", got)
}

func TestGuessMatterCategory(t *testing.T) {
	assert.Equal(t, "Bylaw", guessMatterCategory("Bylaw 1160"))
	assert.Equal(t, "Development", guessMatterCategory("DVP 2025-01"))
	assert.Equal(t, "General", guessMatterCategory("Something Else"))
}

func TestCouncilAttendees(t *testing.T) {
	got := councilAttendees([]string{"Mayor Screech", "K. Anema, CAO", "Councillor Jane Doe"})
	assert.Equal(t, []string{"Mayor Screech", "Councillor Jane Doe"}, got)
}

func TestExpandAddress(t *testing.T) {
	got := expandAddress("105, 106 and 107 Glentana Road")
	assert.Equal(t, []string{"105 glentana road", "106 glentana road", "107 glentana road"}, got)
}
