// Package acquirer implements the Audio/Video Acquirer (§4.3): matching
// archive folders to their recordings via the VideoCatalog and
// downloading/converting them ahead of diarization. Grounded on
// original_source/apps/pipeline/pipeline/orchestrator.py's
// _download_vimeo_content (folder-date-to-video matching and
// subfolder sync) and .../video/vimeo.py's download_video (skip-if-
// exists bookkeeping), reworked into Go: os.walk becomes
// filepath.WalkDir, the yt-dlp/ffmpeg subprocess calls become the
// capability.VideoDownloader/AudioConverter interfaces so this package
// never imports os/exec directly. Not ported: vimeo.py's
// _download_transcript_api VTT path, disabled in the original itself
// ("Disabled by user request").
package acquirer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/changedetector"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// Acquirer walks an archive tree, matches each dated meeting folder
// against the video catalog's recordings, and downloads/converts
// whatever is missing.
type Acquirer struct {
	archiveRoot  string
	videos       capability.VideoCatalog
	downloader   capability.VideoDownloader
	converter    capability.AudioConverter
	includeVideo bool
	logger       *slog.Logger
}

// New creates an Acquirer rooted at archiveRoot.
func New(archiveRoot string, videos capability.VideoCatalog, downloader capability.VideoDownloader, converter capability.AudioConverter, cfg config.AcquirerConfig) *Acquirer {
	return &Acquirer{
		archiveRoot:  archiveRoot,
		videos:       videos,
		downloader:   downloader,
		converter:    converter,
		includeVideo: cfg.IncludeVideo,
		logger:       slog.Default().With("component", "acquirer"),
	}
}

// Run resolves the video catalog once, then walks every folder under
// the archive root looking for a date match.
func (a *Acquirer) Run(ctx context.Context) (models.AcquireReport, error) {
	var report models.AcquireReport

	videoMap, err := a.videos.GetVideoMap(ctx)
	if err != nil {
		return report, fmt.Errorf("acquirer: get video map: %w", err)
	}
	if len(videoMap) == 0 {
		return report, nil
	}

	var folders []string
	err = filepath.WalkDir(a.archiveRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		folders = append(folders, path)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("acquirer: walk archive: %w", err)
	}

	for _, folder := range folders {
		base := filepath.Base(folder)
		date := changedetector.ExtractDateFromString(base)
		if date == "" {
			continue
		}
		videos, ok := videoMap[date]
		if !ok {
			continue
		}

		video := matchVideo(base, videos)
		if video == nil {
			continue
		}

		result, err := a.acquireOne(ctx, folder, date, *video)
		switch {
		case err != nil:
			result.Reason = err.Error()
			report.Failed = append(report.Failed, result)
			a.logger.Error("acquire failed", "folder", folder, "error", err)
		case result.Reason != "":
			report.Skipped = append(report.Skipped, result)
		default:
			a.logger.Info("acquired recording", "folder", folder, "video_title", video.Title)
			report.Downloaded = append(report.Downloaded, result)
		}
	}
	return report, nil
}

// acquireOne downloads (and, for audio, converts) whatever the target
// subfolder is missing for one matched meeting folder. A non-empty
// Reason with a nil error means nothing needed doing.
func (a *Acquirer) acquireOne(ctx context.Context, folder, date string, video capability.VideoRecording) (models.AcquireResult, error) {
	result := models.AcquireResult{ArchivePath: folder, MeetingDate: date, VideoTitle: video.Title}

	// Subfolder choice mirrors the original: video runs sync into Video/
	// (both the muxed file and the audio extraction), audio-only runs
	// sync into Audio/.
	subfolder := "Audio"
	if a.includeVideo {
		subfolder = "Video"
	}
	targetDir := filepath.Join(folder, subfolder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return result, fmt.Errorf("create %s: %w", targetDir, err)
	}

	wantVideo := a.includeVideo && !hasExtension(targetDir, ".mp4")
	wantAudio := !hasExtension(targetDir, ".mp3", ".m4a", ".wav")

	if !wantVideo && !wantAudio {
		result.Reason = "already on disk"
		return result, nil
	}

	if wantVideo {
		path, err := a.downloader.DownloadVideo(ctx, video.URL, targetDir)
		if err != nil {
			return result, fmt.Errorf("download video: %w", err)
		}
		result.VideoPath = path
	}

	if wantAudio {
		path, err := a.downloader.DownloadAudio(ctx, video.URL, targetDir)
		if err != nil {
			return result, fmt.Errorf("download audio: %w", err)
		}

		wavPath, err := a.converter.ConvertTo16kMonoWAV(ctx, path)
		if err != nil {
			return result, fmt.Errorf("convert audio to 16kHz mono: %w", err)
		}
		result.AudioPath = wavPath
	}

	return result, nil
}

// hasExtension reports whether dir contains a file with one of exts,
// the skip-if-exists check from download_video's glob.glob(*.ext).
func hasExtension(dir string, exts ...string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				return true
			}
		}
	}
	return false
}
