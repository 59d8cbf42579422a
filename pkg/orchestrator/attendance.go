package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/viewroyal/civicpipe/pkg/ingest"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// loadAttendance reads a meeting folder's optional attendance.json (§6)
// and flattens it into the category-tagged rows IngestMeeting wants.
// Missing or unparseable files are silently treated as "no override",
// matching the original's try/except around attendance.json.
func loadAttendance(meetingRoot string) []ingest.AttendanceEntry {
	data, err := os.ReadFile(filepath.Join(meetingRoot, "attendance.json"))
	if err != nil {
		return nil
	}
	var override models.AttendanceOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return nil
	}

	var out []ingest.AttendanceEntry
	appendAll := func(entries []models.AttendanceEntry, category string) {
		for _, e := range entries {
			mode := e.Mode
			if mode == "" {
				mode = "In Person"
			}
			out = append(out, ingest.AttendanceEntry{Name: e.Name, Category: category, Mode: mode})
		}
	}
	appendAll(override.Present, "present")
	appendAll(override.Regrets, "regrets")
	appendAll(override.Staff, "staff")
	return out
}

// resolveSharedMedia follows a meeting folder's optional shared_media.json
// pointer (§6) to the canonical sibling folder that actually holds the
// recording/transcript, so a meeting that shares another's media isn't
// treated as missing audio. Returns meetingRoot unchanged if no pointer
// file is present.
func resolveSharedMedia(meetingRoot string) string {
	data, err := os.ReadFile(filepath.Join(meetingRoot, "shared_media.json"))
	if err != nil {
		return meetingRoot
	}
	var pointer models.SharedMediaPointer
	if err := json.Unmarshal(data, &pointer); err != nil || pointer.CanonicalFolder == "" {
		return meetingRoot
	}
	if filepath.IsAbs(pointer.CanonicalFolder) {
		return pointer.CanonicalFolder
	}
	return filepath.Join(filepath.Dir(meetingRoot), pointer.CanonicalFolder)
}

// fingerprintAliasesToSpeakerAliases bridges the diarizer's
// voice-fingerprint matches (models.FingerprintAlias, carrying a resolved
// person_id/confidence/source) onto the plain label->name shape
// refiner.Input.FingerprintAliases expects — the refiner only needs the
// name to fold into its attendee/speaker resolution, not the match
// provenance.
func fingerprintAliasesToSpeakerAliases(aliases []models.FingerprintAlias) []models.SpeakerAlias {
	out := make([]models.SpeakerAlias, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, models.SpeakerAlias{Label: a.Label, Name: a.Name})
	}
	return out
}
