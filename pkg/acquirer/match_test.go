package acquirer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

func TestMatchVideo_SingleEntryAlwaysMatches(t *testing.T) {
	videos := []capability.VideoRecording{{Title: "Whatever Title"}}
	got := matchVideo("2025-03-11 Some Folder", videos)
	require.NotNil(t, got)
	assert.Equal(t, "Whatever Title", got.Title)
}

func TestMatchVideo_PublicHearing(t *testing.T) {
	videos := []capability.VideoRecording{
		{Title: "2025-03-11 Council"},
		{Title: "2025-03-11 Public Hearing"},
	}
	got := matchVideo("2025-03-11 Public Hearing", videos)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-11 Public Hearing", got.Title)
}

func TestMatchVideo_CommitteeOfTheWholeOrCOW(t *testing.T) {
	videos := []capability.VideoRecording{
		{Title: "2025-03-11 Council"},
		{Title: "2025-03-11 COW"},
	}
	got := matchVideo("2025-03-11 Committee of the Whole", videos)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-11 COW", got.Title)
}

func TestMatchVideo_CouncilPrefersNonPublicHearing(t *testing.T) {
	videos := []capability.VideoRecording{
		{Title: "2025-03-11 Public Hearing"},
		{Title: "2025-03-11 Council"},
	}
	got := matchVideo("2025-03-11 Council Meeting", videos)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-11 Council", got.Title)
}

func TestMatchVideo_CouncilFallsBackWhenOnlyPublicHearingTitled(t *testing.T) {
	videos := []capability.VideoRecording{
		{Title: "2025-03-11 Council Public Hearing"},
		{Title: "2025-03-11 Unrelated"},
	}
	got := matchVideo("2025-03-11 Council Meeting", videos)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-11 Council Public Hearing", got.Title)
}

func TestMatchVideo_NoKeywordMatchReturnsNil(t *testing.T) {
	videos := []capability.VideoRecording{
		{Title: "2025-03-11 Council"},
		{Title: "2025-03-11 Public Hearing"},
	}
	got := matchVideo("2025-03-11 Budget Workshop", videos)
	assert.Nil(t, got)
}
