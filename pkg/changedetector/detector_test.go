package changedetector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

type fakeStore struct {
	known map[string]struct{}
	audit []capability.MeetingAuditFlags
}

func (f *fakeStore) KnownArchivePaths(ctx context.Context) (map[string]struct{}, error) {
	return f.known, nil
}

func (f *fakeStore) AuditFlags(ctx context.Context) ([]capability.MeetingAuditFlags, error) {
	return f.audit, nil
}

type fakeVideoCatalog struct {
	videos map[string][]capability.VideoRecording
}

func (f *fakeVideoCatalog) GetVideoMap(ctx context.Context) (map[string][]capability.VideoRecording, error) {
	return f.videos, nil
}

func TestDetectNewMeetings(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Agenda"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "Agenda", "agenda.pdf"), []byte("x"), 0o644))

	store := &fakeStore{known: map[string]struct{}{}}
	d := New(root, store, nil)

	report, err := d.DetectAll(context.Background())
	require.NoError(t, err)

	require.Len(t, report.NewMeetings, 1)
	assert.Equal(t, "2025-03-11", report.NewMeetings[0].MeetingDate)
	assert.Equal(t, "Council", report.NewMeetings[0].MeetingType)
	assert.Contains(t, report.NewMeetings[0].Details, "Agenda on disk")
}

func TestDetectNewMeetings_SkipsKnown(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Agenda"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "Agenda", "agenda.pdf"), []byte("x"), 0o644))

	store := &fakeStore{known: map[string]struct{}{normalizeArchivePath(folder): {}}}
	d := New(root, store, nil)

	report, err := d.DetectAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.NewMeetings)
}

func TestDetectDocumentChanges(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Minutes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "Minutes", "minutes.pdf"), []byte("x"), 0o644))

	store := &fakeStore{
		known: map[string]struct{}{},
		audit: []capability.MeetingAuditFlags{
			{ArchivePath: folder, MeetingDate: "2025-03-11", MeetingType: "Council", HasAgenda: true},
		},
	}
	d := New(root, store, nil)

	report, err := d.DetectAll(context.Background())
	require.NoError(t, err)

	require.Len(t, report.MeetingsWithNewDocs, 1)
	assert.Contains(t, report.MeetingsWithNewDocs[0].Details, "Minutes now on disk")
}

func TestDetectVideoChanges(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Agenda"), 0o755))

	videos := &fakeVideoCatalog{
		videos: map[string][]capability.VideoRecording{
			"2025-03-11": {{Title: "Council Meeting - March 11", URL: "https://vimeo.com/1"}},
		},
	}
	d := New(root, &fakeStore{known: map[string]struct{}{}}, videos)

	report, err := d.DetectAll(context.Background())
	require.NoError(t, err)

	require.Len(t, report.MeetingsWithNewVideo, 1)
	assert.Contains(t, report.MeetingsWithNewVideo[0].Details[0], "Council Meeting - March 11")
}

func TestDetectVideoChanges_SkipsWhenAudioPresent(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Agenda"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "Audio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "Audio", "rec.mp3"), []byte("x"), 0o644))

	videos := &fakeVideoCatalog{
		videos: map[string][]capability.VideoRecording{"2025-03-11": {{Title: "x"}}},
	}
	d := New(root, &fakeStore{known: map[string]struct{}{}}, videos)

	report, err := d.DetectAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.MeetingsWithNewVideo)
}

func TestInferMeetingType(t *testing.T) {
	assert.Equal(t, "Public Hearing", inferMeetingType("2025-03-11 Public Hearing"))
	assert.Equal(t, "Committee of the Whole", inferMeetingType("2025-03-11 COTW"))
	assert.Equal(t, "Council", inferMeetingType("2025-03-11 Regular Council"))
	assert.Equal(t, "Unknown", inferMeetingType("2025-03-11 Workshop"))
}
