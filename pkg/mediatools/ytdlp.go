package mediatools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// YTDLPDownloader fetches recordings via an external yt-dlp binary,
// mirroring vimeo.py's ydl_opts for its mp4 and audio-extraction passes.
type YTDLPDownloader struct {
	binPath string
	timeout time.Duration
}

// NewYTDLPDownloader creates a downloader that invokes binPath (or
// "yt-dlp" on PATH if empty); timeout of 0 means no per-download bound
// beyond the caller's context.
func NewYTDLPDownloader(binPath string, timeout time.Duration) *YTDLPDownloader {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YTDLPDownloader{binPath: binPath, timeout: timeout}
}

// DownloadVideo fetches the best muxed video+audio stream as an mp4,
// matching _download_mp4_ytdlp's format selector and merge format.
func (y *YTDLPDownloader) DownloadVideo(ctx context.Context, url, destDir string) (string, error) {
	args := []string{
		"--format", "bestvideo+bestaudio/best",
		"--merge-output-format", "mp4",
		"--output", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--no-overwrites",
		"--ignore-errors",
		url,
	}
	if err := y.run(ctx, args); err != nil {
		return "", err
	}
	return newestMatch(destDir, ".mp4")
}

// DownloadAudio fetches the best audio-only stream and extracts it to
// mp3, matching _download_audio_ytdlp's FFmpegExtractAudio postprocessor.
func (y *YTDLPDownloader) DownloadAudio(ctx context.Context, url, destDir string) (string, error) {
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--no-overwrites",
		"--ignore-errors",
		url,
	}
	if err := y.run(ctx, args); err != nil {
		return "", err
	}
	return newestMatch(destDir, ".mp3", ".m4a", ".wav")
}

func (y *YTDLPDownloader) run(ctx context.Context, args []string) error {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, y.binPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, lookErr := exec.LookPath(y.binPath); lookErr != nil {
			return fmt.Errorf("mediatools: yt-dlp not found: %w", lookErr)
		}
		return fmt.Errorf("mediatools: yt-dlp: %w: %s", err, out)
	}
	return nil
}

// newestMatch returns the most recently modified file in dir with one of
// the given extensions, mirroring download_video's
// max(files, key=os.path.getctime) pick among possible output formats.
func newestMatch(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("mediatools: read %s: %w", dir, err)
	}

	var newest string
	var newestTime time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if filepath.Ext(e.Name()) != ext {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if newest == "" || info.ModTime().After(newestTime) {
				newest = e.Name()
				newestTime = info.ModTime()
			}
		}
	}
	if newest == "" {
		return "", fmt.Errorf("mediatools: no output file matching %v in %s", exts, dir)
	}
	return filepath.Join(dir, newest), nil
}
