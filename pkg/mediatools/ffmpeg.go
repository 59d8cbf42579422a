// Package mediatools wraps the external audio/video binaries the
// pipeline shells out to — ffmpeg for re-encoding, yt-dlp for fetching
// recordings — behind the capability.AudioConverter and
// capability.VideoDownloader interfaces. Grounded on
// original_source/apps/pipeline/pipeline/local_diarizer.py's
// _prepare_audio (ffmpeg invocation) and .../video/vimeo.py's
// _download_mp4_ytdlp/_download_audio_ytdlp, reworked from Python's
// subprocess.run into os/exec the way tarsy's pkg/mcp/transport.go
// shells out to a stdio MCP server.
package mediatools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegConverter re-encodes audio to 16 kHz mono PCM WAV via an
// external ffmpeg binary.
type FFmpegConverter struct {
	binPath string
}

// NewFFmpegConverter creates a converter that invokes binPath (or
// "ffmpeg" on PATH if empty).
func NewFFmpegConverter(binPath string) *FFmpegConverter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegConverter{binPath: binPath}
}

// ConvertTo16kMonoWAV writes a temp_proc_<name>.wav sibling of
// inputPath, removing a stale one first, matching _prepare_audio's own
// naming and overwrite behavior.
func (f *FFmpegConverter) ConvertTo16kMonoWAV(ctx context.Context, inputPath string) (string, error) {
	dir := filepath.Dir(inputPath)
	cleanName := strings.ReplaceAll(filepath.Base(inputPath), " ", "_")
	outPath := filepath.Join(dir, fmt.Sprintf("temp_proc_%s.wav", cleanName))

	_ = os.Remove(outPath)

	cmd := exec.CommandContext(ctx, f.binPath,
		"-y",
		"-i", inputPath,
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, lookErr := exec.LookPath(f.binPath); lookErr != nil {
			return "", fmt.Errorf("mediatools: ffmpeg not found: %w", lookErr)
		}
		return "", fmt.Errorf("mediatools: ffmpeg convert %s: %w: %s", inputPath, err, out)
	}
	return outPath, nil
}
