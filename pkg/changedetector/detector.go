// Package changedetector implements the Change Detector (§4.2): compares
// the local archive against the store's known meeting state and the
// video catalog's availability to find meetings that are new, have new
// documents, or have a recording not yet diarized. Grounded on
// original_source's pipeline/update_detector.py (UpdateDetector /
// detect_new_meetings / detect_document_changes / detect_video_changes),
// reworked into idiomatic Go: filepath.WalkDir instead of os.walk, a Store
// capability interface instead of a raw supabase client, errors instead
// of print()-ed warnings.
package changedetector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// Detector compares the on-disk archive against store/video-catalog
// state to produce a ChangeReport.
type Detector struct {
	archiveRoot string
	store       capability.Store
	videos      capability.VideoCatalog
}

// New creates a Detector rooted at archiveRoot. store and videos may be
// nil — detection steps that need them are skipped, matching the
// original's "no client provided, skipping" behavior.
func New(archiveRoot string, store capability.Store, videos capability.VideoCatalog) *Detector {
	return &Detector{archiveRoot: archiveRoot, store: store, videos: videos}
}

// DetectAll runs every detection pass and returns the combined report.
func (d *Detector) DetectAll(ctx context.Context) (models.ChangeReport, error) {
	var report models.ChangeReport

	newMeetings, err := d.detectNewMeetings(ctx)
	if err != nil {
		return report, fmt.Errorf("detect new meetings: %w", err)
	}
	report.NewMeetings = newMeetings

	docChanges, err := d.detectDocumentChanges(ctx)
	if err != nil {
		return report, fmt.Errorf("detect document changes: %w", err)
	}
	report.MeetingsWithNewDocs = docChanges

	videoChanges, err := d.detectVideoChanges(ctx)
	if err != nil {
		return report, fmt.Errorf("detect video changes: %w", err)
	}
	report.MeetingsWithNewVideo = videoChanges

	return report, nil
}

// diskDocuments reports which document kinds exist in a meeting folder.
type diskDocuments struct {
	hasAgenda     bool
	hasMinutes    bool
	hasTranscript bool
}

func checkDiskDocuments(folder string) diskDocuments {
	var d diskDocuments
	d.hasAgenda = dirHasFiles(filepath.Join(folder, "Agenda"))
	d.hasMinutes = dirHasFiles(filepath.Join(folder, "Minutes"))
	d.hasTranscript = hasTranscript(folder)
	return d
}

func dirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return true
		}
	}
	return false
}

func hasTranscript(folder string) bool {
	if fileExists(filepath.Join(folder, "transcript.json")) {
		return true
	}
	if fileExists(filepath.Join(folder, "transcript_clean.md")) {
		return true
	}
	if fileExists(filepath.Join(folder, "shared_media.json")) {
		return true
	}
	audioDir := filepath.Join(folder, "Audio")
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, "raw_") {
			return true
		}
	}
	return false
}

func hasAudio(folder string) bool {
	audioDir := filepath.Join(folder, "Audio")
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".mp3") || strings.HasSuffix(name, ".m4a") || strings.HasSuffix(name, ".wav") {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isMeetingFolder reports whether dir contains any of the subdirectory
// names that mark it as a meeting's archive folder.
func isMeetingFolder(dir string, want ...string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names[e.Name()] = struct{}{}
		}
	}
	for _, w := range want {
		if _, ok := names[w]; ok {
			return true
		}
	}
	return false
}

// IsMeetingFolder is isMeetingFolder, exported so pkg/orchestrator walks
// the archive tree for meeting folders with the same Agenda/Audio
// presence rule used for new-meeting detection.
func IsMeetingFolder(dir string) bool {
	return isMeetingFolder(dir, "Agenda", "Audio")
}

// NormalizeArchivePath is normalizeArchivePath, exported so
// pkg/orchestrator stores the same relative archive_path the change
// detector and ingester compare against.
func NormalizeArchivePath(folderPath string) string {
	return normalizeArchivePath(folderPath)
}

// normalizeArchivePath matches the stored archive_path convention: the
// path relative to the "archive" (or "<slug>_archive") directory
// segment, not an absolute filesystem path.
func normalizeArchivePath(folderPath string) string {
	abs, err := filepath.Abs(folderPath)
	if err != nil {
		abs = folderPath
	}
	abs = filepath.ToSlash(abs)

	const marker = "/archive/"
	if idx := strings.Index(abs, marker); idx >= 0 {
		return abs[idx+1:]
	}
	if idx := strings.Index(abs, "_archive"); idx >= 0 {
		return abs[idx:]
	}
	return folderPath
}

func (d *Detector) detectNewMeetings(ctx context.Context) ([]models.ChangeEntry, error) {
	if d.store == nil {
		return nil, nil
	}

	var folders []string
	err := filepath.WalkDir(d.archiveRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if isMeetingFolder(path, "Agenda", "Audio") {
			folders = append(folders, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, nil
	}

	known, err := d.store.KnownArchivePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list known archive paths: %w", err)
	}

	var changes []models.ChangeEntry
	for _, folder := range folders {
		normalized := normalizeArchivePath(folder)
		if _, ok := known[normalized]; ok {
			continue
		}

		base := filepath.Base(folder)
		date := ExtractDateFromString(base)
		if date == "" {
			date = "unknown"
		}
		disk := checkDiskDocuments(folder)

		var details []string
		if disk.hasAgenda {
			details = append(details, "Agenda on disk")
		}
		if disk.hasMinutes {
			details = append(details, "Minutes on disk")
		}
		if disk.hasTranscript {
			details = append(details, "Transcript on disk")
		}
		if len(details) == 0 {
			continue
		}

		changes = append(changes, models.ChangeEntry{
			ArchivePath: folder,
			MeetingDate: date,
			MeetingType: inferMeetingType(base),
			Details:     details,
		})
	}
	return changes, nil
}

func (d *Detector) detectDocumentChanges(ctx context.Context) ([]models.ChangeEntry, error) {
	if d.store == nil {
		return nil, nil
	}
	flags, err := d.store.AuditFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit flags: %w", err)
	}

	var changes []models.ChangeEntry
	for _, mf := range flags {
		if mf.ArchivePath == "" {
			continue
		}
		disk := checkDiskDocuments(mf.ArchivePath)

		var details []string
		if disk.hasAgenda && !mf.HasAgenda {
			details = append(details, "Agenda now on disk")
		}
		if disk.hasMinutes && !mf.HasMinutes {
			details = append(details, "Minutes now on disk")
		}
		if disk.hasTranscript && !mf.HasTranscript {
			details = append(details, "Transcript now on disk")
		}
		if len(details) == 0 {
			continue
		}

		changes = append(changes, models.ChangeEntry{
			ArchivePath: mf.ArchivePath,
			MeetingDate: mf.MeetingDate,
			MeetingType: mf.MeetingType,
			Details:     details,
		})
	}
	return changes, nil
}

func (d *Detector) detectVideoChanges(ctx context.Context) ([]models.ChangeEntry, error) {
	if d.videos == nil {
		return nil, nil
	}
	videoMap, err := d.videos.GetVideoMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("get video map: %w", err)
	}
	if len(videoMap) == 0 {
		return nil, nil
	}

	var changes []models.ChangeEntry
	err = filepath.WalkDir(d.archiveRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if !isMeetingFolder(path, "Agenda", "Minutes") {
			return nil
		}

		base := filepath.Base(path)
		date := ExtractDateFromString(base)
		if date == "" {
			return nil
		}
		videos, ok := videoMap[date]
		if !ok {
			return nil
		}
		if hasAudio(path) || hasTranscript(path) {
			return nil
		}

		titles := make([]string, 0, len(videos))
		for _, v := range videos {
			titles = append(titles, "Vimeo video available: "+v.Title)
		}

		changes = append(changes, models.ChangeEntry{
			ArchivePath: path,
			MeetingDate: date,
			MeetingType: inferMeetingType(base),
			Details:     titles,
			Meta:        map[string]any{"videos": videos},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}
