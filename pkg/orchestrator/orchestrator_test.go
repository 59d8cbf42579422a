package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

func TestMeetingFolderPath(t *testing.T) {
	m := capability.ScrapedMeeting{
		Date:        time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		MeetingType: "Council",
	}
	got := meetingFolderPath("/archive", m)
	assert.Equal(t, filepath.Join("/archive", "2025-03-11 Council"), got)
}

func TestFindAudioFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Audio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Audio", "rec.mp3"), []byte("x"), 0o644))

	assert.Equal(t, filepath.Join(dir, "Audio", "rec.mp3"), findAudioFile(dir))
	assert.Equal(t, "", findAudioFile(t.TempDir()))
}

func TestTranscriptText(t *testing.T) {
	segs := []models.TranscriptSegment{
		{Speaker: "Mayor Smith", Text: "Call to order."},
		{Speaker: "", Text: "inaudible"},
	}
	got := transcriptText(segs)
	assert.Equal(t, "Mayor Smith: Call to order.\nUnknown: inaudible", got)
}

func TestFingerprintAliasesToSpeakerAliases(t *testing.T) {
	in := []models.FingerprintAlias{
		{Label: "Speaker_00", Name: "Mayor Smith", PersonID: 4, Confidence: 0.91, Source: "voice_fingerprint"},
	}
	got := fingerprintAliasesToSpeakerAliases(in)
	require.Len(t, got, 1)
	assert.Equal(t, models.SpeakerAlias{Label: "Speaker_00", Name: "Mayor Smith"}, got[0])
}

func TestLoadAttendance(t *testing.T) {
	dir := t.TempDir()
	raw := `{"present":[{"name":"Jane Doe","mode":"In Person"}],"regrets":[{"name":"John Roe"}],"staff":[{"name":"Clerk"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "attendance.json"), []byte(raw), 0o644))

	entries := loadAttendance(dir)
	require.Len(t, entries, 3)
	assert.Equal(t, "Jane Doe", entries[0].Name)
	assert.Equal(t, "present", entries[0].Category)
	assert.Equal(t, "In Person", entries[0].Mode)
	assert.Equal(t, "regrets", entries[1].Category)
	assert.Equal(t, "In Person", entries[1].Mode) // default mode when unset
	assert.Equal(t, "staff", entries[2].Category)
}

func TestLoadAgendaText_PrefersCachedMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agenda.md"), []byte("1. Call to order"), 0o644))
	assert.Equal(t, "1. Call to order", loadAgendaText(dir))
}

func TestLoadAgendaText_NoFileReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", loadAgendaText(t.TempDir()))
}

func TestLoadAttendance_MissingFile(t *testing.T) {
	assert.Nil(t, loadAttendance(t.TempDir()))
}

func TestResolveSharedMedia(t *testing.T) {
	root := t.TempDir()
	meetingRoot := filepath.Join(root, "2025-01-01 Council")
	canonical := filepath.Join(root, "2025-01-01 Special Council")
	require.NoError(t, os.MkdirAll(meetingRoot, 0o755))

	pointer := `{"canonical_folder":"2025-01-01 Special Council"}`
	require.NoError(t, os.WriteFile(filepath.Join(meetingRoot, "shared_media.json"), []byte(pointer), 0o644))

	assert.Equal(t, canonical, resolveSharedMedia(meetingRoot))
	assert.Equal(t, meetingRoot, resolveSharedMedia(filepath.Join(root, "no-pointer")))
}

func TestCompletedPhases(t *testing.T) {
	assert.Equal(t, []string{"docs", "diarize", "ingest", "embed"}, completedPhases(RunOptions{}, true))
	assert.Equal(t, []string{"docs", "ingest"}, completedPhases(RunOptions{SkipEmbed: true}, false))
}

func TestReportSucceededAndFailed(t *testing.T) {
	report := Report{Processed: []MeetingOutcome{
		{ArchivePath: "a", MeetingID: 1},
		{ArchivePath: "b", Error: assertErr},
	}}
	assert.Len(t, report.Succeeded(), 1)
	assert.Len(t, report.Failed(), 1)
}

var assertErr = assertTestError("boom")

type assertTestError string

func (e assertTestError) Error() string { return string(e) }
