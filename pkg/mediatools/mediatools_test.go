package mediatools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewestMatch_PicksMostRecentlyModified(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "a.mp3")
	newer := filepath.Join(dir, "b.mp3")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("y"), 0o644))
	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	got, err := newestMatch(dir, ".mp3", ".m4a", ".wav")
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestNewestMatch_NoMatchReturnsError(t *testing.T) {
	dir := t.TempDir()
	_, err := newestMatch(dir, ".mp3")
	assert.Error(t, err)
}

func TestFFmpegConverter_MissingBinaryReturnsNotFoundError(t *testing.T) {
	conv := NewFFmpegConverter("/nonexistent/ffmpeg-bin-xyz")
	_, err := conv.ConvertTo16kMonoWAV(context.Background(), filepath.Join(t.TempDir(), "in.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg not found")
}

func TestYTDLPDownloader_MissingBinaryReturnsNotFoundError(t *testing.T) {
	dl := NewYTDLPDownloader("/nonexistent/yt-dlp-bin-xyz", 0)
	_, err := dl.DownloadVideo(context.Background(), "https://example.com/v/1", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yt-dlp not found")
}
