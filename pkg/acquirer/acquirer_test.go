package acquirer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/config"
)

type fakeVideoCatalog struct {
	videoMap map[string][]capability.VideoRecording
}

func (f *fakeVideoCatalog) GetVideoMap(ctx context.Context) (map[string][]capability.VideoRecording, error) {
	return f.videoMap, nil
}

type fakeDownloader struct {
	videoCalls int
	audioCalls int
}

func (f *fakeDownloader) DownloadVideo(ctx context.Context, url, destDir string) (string, error) {
	f.videoCalls++
	path := filepath.Join(destDir, "meeting.mp4")
	return path, os.WriteFile(path, []byte("video"), 0o644)
}

func (f *fakeDownloader) DownloadAudio(ctx context.Context, url, destDir string) (string, error) {
	f.audioCalls++
	path := filepath.Join(destDir, "meeting.mp3")
	return path, os.WriteFile(path, []byte("audio"), 0o644)
}

type fakeConverter struct {
	calls int
}

func (f *fakeConverter) ConvertTo16kMonoWAV(ctx context.Context, inputPath string) (string, error) {
	f.calls++
	out := inputPath + ".16k.wav"
	return out, os.WriteFile(out, []byte("wav"), 0o644)
}

func TestAcquirer_Run_DownloadsAndConvertsAudioForMatchedFolder(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	catalog := &fakeVideoCatalog{videoMap: map[string][]capability.VideoRecording{
		"2025-03-11": {{Title: "2025-03-11 Council", URL: "https://vimeo.com/1"}},
	}}
	downloader := &fakeDownloader{}
	converter := &fakeConverter{}

	a := New(root, catalog, downloader, converter, config.AcquirerConfig{})
	report, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Downloaded, 1)
	assert.Equal(t, 1, downloader.audioCalls)
	assert.Equal(t, 0, downloader.videoCalls)
	assert.Equal(t, 1, converter.calls)
	assert.Contains(t, report.Downloaded[0].AudioPath, "16k.wav")

	audioDir := filepath.Join(folder, "Audio")
	info, err := os.Stat(audioDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAcquirer_Run_SkipsWhenAudioAlreadyOnDisk(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	audioDir := filepath.Join(folder, "Audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "existing.mp3"), []byte("x"), 0o644))

	catalog := &fakeVideoCatalog{videoMap: map[string][]capability.VideoRecording{
		"2025-03-11": {{Title: "2025-03-11 Council", URL: "https://vimeo.com/1"}},
	}}
	downloader := &fakeDownloader{}
	converter := &fakeConverter{}

	a := New(root, catalog, downloader, converter, config.AcquirerConfig{})
	report, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "already on disk", report.Skipped[0].Reason)
	assert.Equal(t, 0, downloader.audioCalls)
	assert.Equal(t, 0, converter.calls)
}

func TestAcquirer_Run_IncludeVideoDownloadsBothIntoVideoFolder(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "2025-03-11 Council Meeting")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	catalog := &fakeVideoCatalog{videoMap: map[string][]capability.VideoRecording{
		"2025-03-11": {{Title: "2025-03-11 Council", URL: "https://vimeo.com/1"}},
	}}
	downloader := &fakeDownloader{}
	converter := &fakeConverter{}

	a := New(root, catalog, downloader, converter, config.AcquirerConfig{IncludeVideo: true})
	report, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Downloaded, 1)
	assert.Equal(t, 1, downloader.videoCalls)
	assert.Equal(t, 1, downloader.audioCalls)
	_, err = os.Stat(filepath.Join(folder, "Video"))
	assert.NoError(t, err)
}

func TestAcquirer_Run_NoDateMatchSkipsFolder(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "Unrelated Folder")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	catalog := &fakeVideoCatalog{videoMap: map[string][]capability.VideoRecording{
		"2025-03-11": {{Title: "2025-03-11 Council", URL: "https://vimeo.com/1"}},
	}}
	a := New(root, catalog, &fakeDownloader{}, &fakeConverter{}, config.AcquirerConfig{})
	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Downloaded)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)
}
