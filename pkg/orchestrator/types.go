// Package orchestrator implements the Orchestrator (§4.1): drives the
// pipeline's phases in order over either the whole archive tree or a
// single target, honoring skip/force flags and isolating one meeting's
// failure from the rest of the run. Grounded on
// original_source/apps/pipeline/pipeline/orchestrator.py's
// PipelineOrchestrator (phase sequencing, per-meeting try/except
// continue, update-mode's change-detector-then-targeted-reprocess
// shape), reworked onto this repo's own capability-interface components
// instead of the original's direct Supabase/Gemini/yt-dlp calls.
package orchestrator

import (
	"fmt"
)

// RunOptions controls one Run invocation's phase selection (§4.1, §6).
type RunOptions struct {
	Limit           int
	IncludeVideo    bool
	DownloadAudio   bool
	SkipDocs        bool
	SkipDiarization bool
	SkipIngest      bool
	SkipEmbed       bool
	Rediarize       bool
	ForceUpdate     bool
}

// MeetingOutcome records what happened to one meeting folder during a
// run, success or failure.
type MeetingOutcome struct {
	ArchivePath string
	MeetingID   int
	Error       error
}

// Report summarizes one Run/Update/Target invocation.
type Report struct {
	Processed []MeetingOutcome
	Skipped   []string
	EmbedErr  error
}

// Succeeded returns every outcome that completed without error.
func (r Report) Succeeded() []MeetingOutcome {
	var out []MeetingOutcome
	for _, o := range r.Processed {
		if o.Error == nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns every outcome that raised an error, the meetings the
// orchestrator logged and moved past rather than aborting the run for.
func (r Report) Failed() []MeetingOutcome {
	var out []MeetingOutcome
	for _, o := range r.Processed {
		if o.Error != nil {
			out = append(out, o)
		}
	}
	return out
}

func (o MeetingOutcome) String() string {
	if o.Error == nil {
		return fmt.Sprintf("%s: ok (meeting_id=%d)", o.ArchivePath, o.MeetingID)
	}
	return fmt.Sprintf("%s: failed: %v", o.ArchivePath, o.Error)
}
