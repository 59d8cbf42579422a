// Package batchextractor implements the Batch Extractor (§4.6): a wave
// scheduler that drives the two-pass Document Extractor through a remote
// asynchronous batch API, checkpointing progress to disk so a crashed run
// can resume instead of restarting. Grounded on original_source/apps/
// pipeline/pipeline/ingestion/batch_extractor.py's state machine and wave
// packer (the push-notification webhook in that file is operational
// noise unrelated to the extraction pipeline and was not carried over).
package batchextractor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// Phase is one state in the batch extractor's state machine.
type Phase string

const (
	PhaseBoundaryDetection Phase = "boundary_detection"
	PhaseContentExtraction Phase = "content_extraction"
	PhaseDBInsertion       Phase = "db_insertion"
	PhaseComplete          Phase = "complete"
)

// WaveState records one content-phase wave's remote job and completion.
type WaveState struct {
	Wave    int                       `json:"wave"`
	JobID   string                    `json:"job_id"`
	Status  capability.BatchJobStatus `json:"status"`
	FileIDs []string                  `json:"file_ids"`
}

// State is the on-disk checkpoint, resumable across process restarts.
type State struct {
	Phase            Phase             `json:"phase"`
	BoundaryJobID    string            `json:"boundary_job_id,omitempty"`
	BoundaryFileIDs  []string          `json:"boundary_uploaded_files,omitempty"`
	BoundaryResults  map[string]string `json:"boundary_results,omitempty"` // "<meetingKey>::chunk<N>" -> raw boundary JSON response
	ContentWaves     []WaveState       `json:"content_waves,omitempty"`
	ContentResults   map[string]string `json:"content_results,omitempty"` // "<meetingKey>:<pageStart>-<pageEnd>" -> markdown
	MeetingsInserted []string          `json:"meetings_inserted,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
}

func newState() *State {
	return &State{
		Phase:           PhaseBoundaryDetection,
		BoundaryResults: make(map[string]string),
		ContentResults:  make(map[string]string),
		Errors:          make(map[string]string),
	}
}

// LoadState reads the checkpoint file at path, or returns a fresh State if
// it doesn't exist or force is set (deleting any existing file first).
func LoadState(path string, force bool) (*State, error) {
	if force {
		_ = os.Remove(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newState(), nil
		}
		return nil, err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return newState(), nil
	}
	if s.BoundaryResults == nil {
		s.BoundaryResults = make(map[string]string)
	}
	if s.ContentResults == nil {
		s.ContentResults = make(map[string]string)
	}
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	return &s, nil
}

// SaveState persists the checkpoint, creating its parent directory if
// needed.
func SaveState(path string, s *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// waveComplete reports whether wave index idx has already been recorded
// as submitted-and-merged in the checkpoint.
func (s *State) waveComplete(idx int) bool {
	for _, w := range s.ContentWaves {
		if w.Wave == idx && w.Status == capability.BatchSucceeded {
			return true
		}
	}
	return false
}
