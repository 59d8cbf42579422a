package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viewroyal/civicpipe/ent/person"
	"github.com/viewroyal/civicpipe/pkg/aligner"
	"github.com/viewroyal/civicpipe/pkg/changedetector"
	"github.com/viewroyal/civicpipe/pkg/diarizer"
	"github.com/viewroyal/civicpipe/pkg/ingest"
	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/notifier"
	"github.com/viewroyal/civicpipe/pkg/refiner"
)

var audioExtensions = []string{".mp3", ".m4a", ".wav"}

// findAudioFile returns the first audio file in folder/Audio, or "" if
// none exists yet.
func findAudioFile(folder string) string {
	dir := filepath.Join(folder, "Audio")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range audioExtensions {
			if ext == want {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	return ""
}

// transcriptText ports the "{speaker}: {text}" join the original feeds
// to the refiner, one line per merged segment.
func transcriptText(segments []models.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, seg.Text))
	}
	return strings.Join(lines, "\n")
}

// activeCouncilMembers loads every known councillor's name, fed to the
// refiner as a disambiguation hint (§4.7).
func (o *Orchestrator) activeCouncilMembers(ctx context.Context) ([]string, error) {
	people, err := o.db.Person.Query().Where(person.IsCouncillor(true)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list councillors: %w", err)
	}
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names, nil
}

// processMeeting runs one meeting folder through diarize -> refine ->
// align -> ingest, in that order, skipping whatever opts says to skip.
// Grounded on orchestrator.py's per-audio-file processing loop followed
// by ingester.py's process_meeting: both treat a meeting folder as the
// unit of work and both let a failure here only affect this one folder
// (§4.1 failure policy — enforced by the caller, not this method).
func (o *Orchestrator) processMeeting(ctx context.Context, folder string, opts RunOptions, forceRefine bool) (MeetingOutcome, error) {
	outcome := MeetingOutcome{ArchivePath: changedetector.NormalizeArchivePath(folder)}

	canonicalFolder := resolveSharedMedia(folder)
	base := filepath.Base(folder)
	dateStr := changedetector.ExtractDateFromString(base)
	meetingDate, _ := time.Parse("2006-01-02", dateStr)
	meetingType := changedetector.InferMeetingType(base)

	var transcript *models.TranscriptJSON
	if !opts.SkipDiarization {
		if audioPath := findAudioFile(canonicalFolder); audioPath != "" {
			t, err := o.diarizer.Diarize(ctx, audioPath, diarizer.Options{Rediarize: opts.Rediarize})
			if err != nil {
				return outcome, fmt.Errorf("diarize: %w", err)
			}
			transcript = t
		}
	}
	if transcript == nil {
		transcript = loadCachedTranscriptJSON(canonicalFolder)
	}

	agendaText := loadAgendaText(folder)
	minutesText := loadMinutesText(folder)
	attendance := loadAttendance(folder)

	hasAgenda := agendaText != ""
	hasMinutes := minutesText != ""
	hasTranscript := transcript != nil && len(transcript.Segments) > 0

	var input ingest.MeetingInput
	input.ArchivePath = outcome.ArchivePath
	input.Title = base
	input.MeetingDate = meetingDate
	input.MeetingTypeGuess = meetingType
	input.HasAgenda = hasAgenda
	input.HasMinutes = hasMinutes
	input.HasTranscript = hasTranscript
	input.Attendance = attendance

	if !forceRefine && !hasAgenda && !hasMinutes && !hasTranscript {
		// Nothing new to refine; still run IngestMeeting so document/
		// flag bookkeeping stays current for a folder revisited without
		// new content (mirrors process_meeting's non-force path).
		result, err := o.ingester.IngestMeeting(ctx, input, nil)
		if err != nil {
			return outcome, fmt.Errorf("ingest: %w", err)
		}
		outcome.MeetingID = result.MeetingID
		return outcome, nil
	}

	councilMembers, err := o.activeCouncilMembers(ctx)
	if err != nil {
		return outcome, err
	}

	attendeesHint := make([]string, 0, len(attendance))
	for _, a := range attendance {
		attendeesHint = append(attendeesHint, a.Name)
	}

	var fingerprintAliases []models.SpeakerAlias
	var transcriptSegments []models.TranscriptSegment
	if transcript != nil {
		fingerprintAliases = fingerprintAliasesToSpeakerAliases(transcript.SpeakerAliases)
		transcriptSegments = transcript.Segments
	}

	refinerInput := refiner.Input{
		AgendaText:           agendaText,
		MinutesText:          minutesText,
		TranscriptText:       transcriptText(transcriptSegments),
		AttendeesHint:        attendeesHint,
		FingerprintAliases:   fingerprintAliases,
		ActiveCouncilMembers: councilMembers,
		MeetingDate:          meetingDate,
	}

	refined, err := o.refiner.Refine(ctx, refinerInput)
	if err != nil {
		return outcome, fmt.Errorf("refine: %w", err)
	}
	refined.Items = aligner.AlignMeetingItems(refined.Items, transcriptSegments)

	result, err := o.ingester.IngestMeeting(ctx, input, refined)
	if err != nil {
		return outcome, fmt.Errorf("ingest: %w", err)
	}
	outcome.MeetingID = result.MeetingID

	o.notifier.NotifyMeetingProcessed(ctx, notifier.MeetingProcessedEvent{
		MunicipalitySlug: o.municipalitySlug,
		MeetingID:        result.MeetingID,
		Status:           result.Status,
		PhasesCompleted:  completedPhases(opts, transcript != nil),
		ProcessedAt:      time.Now(),
	})
	return outcome, nil
}

func completedPhases(opts RunOptions, diarized bool) []string {
	phases := []string{"docs"}
	if diarized {
		phases = append(phases, "diarize")
	}
	phases = append(phases, "ingest")
	if !opts.SkipEmbed {
		phases = append(phases, "embed")
	}
	return phases
}

// loadCachedTranscriptJSON is a best-effort read of a folder's persisted
// transcript.json, for a meeting whose diarization already ran in a
// prior invocation and isn't being redone now.
func loadCachedTranscriptJSON(folder string) *models.TranscriptJSON {
	audioPath := findAudioFile(folder)
	if audioPath == "" {
		return nil
	}
	jsonPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil
	}
	var t models.TranscriptJSON
	if err := json.Unmarshal(data, &t); err != nil {
		return nil
	}
	return &t
}
