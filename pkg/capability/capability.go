// Package capability declares the external-system contracts of §6: the
// narrow interfaces pipeline stages depend on instead of concrete
// third-party clients, so each stage can be exercised against a fake in
// tests. Mirrors tarsy's own pattern of small, stage-owned interfaces
// (e.g. pkg/llm's Client interface) rather than one god-interface.
package capability

import (
	"context"
	"time"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// VideoRecording is one video a VideoCatalog backend knows about for a
// given date.
type VideoRecording struct {
	Title string
	URL   string
	ID    string
}

// VideoCatalog resolves a meeting date to its available recordings.
// pkg/videocatalog's Vimeo client is the only implementation, and
// cmd/civicpipe builds it whatever VideoCatalogConfig.Backend says.
type VideoCatalog interface {
	// GetVideoMap returns every known recording keyed by the meeting date
	// (YYYY-MM-DD) it covers.
	GetVideoMap(ctx context.Context) (map[string][]VideoRecording, error)
}

// ScrapedDocument is one document link a Scraper finds on a meeting's
// agenda page.
type ScrapedDocument struct {
	Title string
	URL   string
	Kind  string // "agenda", "minutes", "attachment"
}

// ScrapedMeeting is one meeting listing a Scraper finds.
type ScrapedMeeting struct {
	Date        time.Time
	MeetingType string
	Documents   []ScrapedDocument
}

// Scraper discovers meeting listings and their document links from a
// municipality's agenda-management portal (CivicWeb, Legistar, eSCRIBE,
// or a generic HTML fallback), per ScraperConfig.Backend.
type Scraper interface {
	ListMeetings(ctx context.Context, since time.Time) ([]ScrapedMeeting, error)
}

// MeetingAuditFlags reports what the store already believes exists for a
// meeting, for comparison against what the Change Detector finds on
// disk.
type MeetingAuditFlags struct {
	ArchivePath    string
	MeetingDate    string
	MeetingType    string
	HasAgenda      bool
	HasMinutes     bool
	HasTranscript  bool
}

// BoundaryDocument is one sub-document entry a DocumentAI's boundary pass
// finds within an agenda PDF.
type BoundaryDocument struct {
	Title      string
	PageStart  int
	PageEnd    int
	Type       string
	AgendaItem string
	Summary    string
	KeyFacts   []string
}

// DocumentAI is the two-pass PDF-understanding capability the Document
// Extractor depends on (§4.5): detect sub-document boundaries within an
// agenda PDF, then produce clean markdown for one page range of it.
// page-range extraction to a standalone PDF is the implementation's
// concern (upload full doc + range, or crop and upload) so this package
// never needs its own PDF-writing dependency.
type DocumentAI interface {
	DetectBoundaries(ctx context.Context, pdf []byte) ([]BoundaryDocument, error)
	ExtractMarkdown(ctx context.Context, pdf []byte, pageStart, pageEnd int) (string, error)
}

// PDFSlicer extracts a page range from a PDF into a standalone PDF
// renumbered from page 1, for chunking oversized boundary-detection
// requests (§4.5 C2) and for producing per-boundary sub-documents ahead
// of the content-extraction pass. Kept as its own narrow capability so
// the Document Extractor never needs its own PDF-writing dependency.
type PDFSlicer interface {
	SlicePages(ctx context.Context, pdf []byte, startPage, endPage int) ([]byte, error)
	// SlicePagesWithHead is SlicePages but re-includes the PDF's first
	// headPages pages (the TOC) ahead of the requested range, for C2's
	// chunked-boundary-detection pass.
	SlicePagesWithHead(ctx context.Context, pdf []byte, headPages, startPage, endPage int) ([]byte, error)
}

// BatchJobStatus is the remote asynchronous batch job's lifecycle state.
type BatchJobStatus string

const (
	BatchPending   BatchJobStatus = "pending"
	BatchRunning   BatchJobStatus = "running"
	BatchSucceeded BatchJobStatus = "succeeded"
	BatchFailed    BatchJobStatus = "failed"
	BatchCancelled BatchJobStatus = "cancelled"
)

// BatchAPI is the remote asynchronous batch-processing capability the
// Batch Extractor (§4.6) drives: upload files, submit a JSONL request
// batch, poll it to completion, and download the JSONL results. Modeled
// on a provider's file-API + batch-API pair (e.g. Gemini's Batch API),
// kept opaque so the wave scheduler never depends on a concrete SDK.
type BatchAPI interface {
	UploadFile(ctx context.Context, displayName string, data []byte) (fileID string, err error)
	DeleteFile(ctx context.Context, fileID string) error
	SubmitJob(ctx context.Context, requestsFileID, displayName string) (jobID string, err error)
	PollJob(ctx context.Context, jobID string) (BatchJobStatus, error)
	DownloadResults(ctx context.Context, jobID string) ([]byte, error)
}

// VideoDownloader fetches a recording's binary (muxed video or
// audio-only) from a VideoRecording.URL to a local directory, the
// opaque external-tool capability the Acquirer (§4.3) depends on —
// mirrors shelling out to yt-dlp rather than a Vimeo-specific
// binary-download endpoint. Skip-if-exists bookkeeping and extension
// matching stay in pkg/acquirer; this interface only performs the fetch
// and reports where the file landed.
type VideoDownloader interface {
	// DownloadVideo saves the best available muxed video+audio stream
	// into destDir, returning the path it wrote.
	DownloadVideo(ctx context.Context, url, destDir string) (path string, err error)
	// DownloadAudio saves the best available audio-only stream into
	// destDir, returning the path it wrote.
	DownloadAudio(ctx context.Context, url, destDir string) (path string, err error)
}

// AudioConverter re-encodes an audio file to 16 kHz mono PCM, the opaque
// external-encoder capability (mirrors an ffmpeg subprocess) shared by
// the Acquirer (§4.3, ahead of diarizer handoff) and the Diarizer (§4.4
// step 1, its own preprocessing pass over whatever file it's handed).
type AudioConverter interface {
	ConvertTo16kMonoWAV(ctx context.Context, inputPath string) (outputPath string, err error)
}

// SpeakerPipeline runs the segmentation+embedding model over a 16 kHz
// mono WAV, returning per-segment speaker labels and each label's voice
// embedding (centroid) — §4.4 step 2, treated as a pure external model
// call (mirrors senko).
type SpeakerPipeline interface {
	Diarize(ctx context.Context, wavPath string) (models.DiarizationResult, error)
}

// SpeechToText runs the transcription model over a 16 kHz mono WAV,
// returning raw unattributed segments — §4.4 step 3, treated as a pure
// external model call (mirrors parakeet-mlx).
type SpeechToText interface {
	Transcribe(ctx context.Context, wavPath string) ([]models.RawSTTSegment, error)
}

// EmbeddingProvider generates vector embeddings for a batch of texts — the
// Embedder's (§4.11) external-model call. Kept as its own capability
// rather than folded into llmclient.Client.GenerateStructured: that RPC's
// shape is one prompt in, one completion out, whereas embedding is many
// texts in, many fixed-width vectors out (mirrors the original's direct
// OpenAI text-embedding-3-small client, a separate call from its
// structured-extraction LLM calls).
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the persistence capability the Change Detector depends on.
// Implemented by pkg/ingest's ent-backed adapter;
// narrowed to the methods each stage actually calls rather than exposing
// the whole ent client.
type Store interface {
	// KnownArchivePaths returns every meeting's archive_path already
	// recorded, for the Change Detector's new-meeting scan.
	KnownArchivePaths(ctx context.Context) (map[string]struct{}, error)
	// AuditFlags returns the has_agenda/has_minutes/has_transcript state
	// of every known meeting, for the Change Detector's document-change
	// scan.
	AuditFlags(ctx context.Context) ([]MeetingAuditFlags, error)
}
