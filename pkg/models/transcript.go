package models

// TranscriptJSON is the final persisted form of a diarized meeting
// recording, written alongside the audio file (§6 file formats).
type TranscriptJSON struct {
	Segments          []TranscriptSegment        `json:"segments"`
	SpeakerCentroids  map[string][]float32        `json:"speaker_centroids"`
	SpeakerSamples    map[string]SpeakerSample    `json:"speaker_samples"`
	SpeakerMapping    map[string]string           `json:"speaker_mapping"`
	SpeakerAliases    []FingerprintAlias          `json:"speaker_aliases"`
	FingerprintMatches map[string]FingerprintMatch `json:"fingerprint_matches"`
}

// TranscriptSegment is one merged STT+diarization segment.
type TranscriptSegment struct {
	Start              float64 `json:"start"`
	End                float64 `json:"end"`
	Text               string  `json:"text"`
	Speaker            string  `json:"speaker"`
	SpeakerConfidence  float64 `json:"speaker_confidence"`
}

// SpeakerSample is the first clip (≤15s) where a label appears, used for
// UI playback of "who does Speaker_02 sound like".
type SpeakerSample struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FingerprintAlias resolves a diarizer speaker label to a known person via
// voice fingerprint matching.
type FingerprintAlias struct {
	Label      string  `json:"label"`
	Name       string  `json:"name"`
	PersonID   int     `json:"person_id"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // always "voice_fingerprint"
}

// FingerprintMatch is the raw similarity result behind a FingerprintAlias.
type FingerprintMatch struct {
	PersonID      int     `json:"person_id"`
	PersonName    string  `json:"person_name"`
	Similarity    float64 `json:"similarity"`
	FingerprintID int     `json:"fingerprint_id"`
}

// RawSTTSegment is the STT pass's output before diarization merge, cached
// to "<audio>_raw_transcript.json" so rediarize can skip re-running STT.
type RawSTTSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DiarizationSegment is one segment+label from the segmentation+embedding
// model, prior to merge with STT output.
type DiarizationSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker_label"`
}

// DiarizationResult is the opaque SpeakerPipeline.run output (§6).
type DiarizationResult struct {
	Segments          []DiarizationSegment `json:"segments"`
	SpeakerCentroids  map[string][]float32 `json:"speaker_centroids"`
}

// SharedMediaPointer redirects a meeting folder with no audio of its own to
// a canonical sibling folder that already has the recording.
type SharedMediaPointer struct {
	CanonicalFolder string `json:"canonical_folder"`
}

// AttendanceOverride is the manual attendance.json an operator can drop
// into a meeting folder to correct or supplement diarizer-derived roles.
type AttendanceOverride struct {
	Present []AttendanceEntry `json:"present"`
	Regrets []AttendanceEntry `json:"regrets"`
	Staff   []AttendanceEntry `json:"staff"`
}

// AttendanceEntry is one name in an AttendanceOverride list.
type AttendanceEntry struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	Mode  string   `json:"mode,omitempty"`
}
