package batchextractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/docextract"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// MeetingPDF is one agenda package queued for extraction through the
// batch pipeline.
type MeetingPDF struct {
	Key         string // stable identifier, e.g. "<meeting_id>"
	DocumentID  int
	PDFBytes    []byte
	PageCount   int
	AgendaItems []models.AgendaItemRecord
	// AgendaItemDBIDs holds the already-inserted agenda_items.id for each
	// entry of AgendaItems, same index alignment. docextract.LinkAgendaItem
	// returns an index into AgendaItems, not a database id; insertMeetingDocs
	// uses this slice to translate before writing document_sections rows.
	AgendaItemDBIDs []int
}

// Scheduler drives the Document Extractor's boundary and content passes
// through a remote asynchronous batch API instead of calling
// capability.DocumentAI synchronously per document, packing requests into
// size-capped waves and checkpointing progress so a crashed run resumes
// instead of restarting.
type Scheduler struct {
	api            capability.BatchAPI
	slicer         capability.PDFSlicer
	db             *ent.Client
	checkpointPath string
	maxWaveBytes   int64
	pollInterval   time.Duration
	logger         *slog.Logger
}

func NewScheduler(api capability.BatchAPI, slicer capability.PDFSlicer, db *ent.Client, checkpointPath string, maxWaveBytes int64, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		api:            api,
		slicer:         slicer,
		db:             db,
		checkpointPath: checkpointPath,
		maxWaveBytes:   maxWaveBytes,
		pollInterval:   pollInterval,
		logger:         slog.Default().With("component", "batchextractor"),
	}
}

// Result is one meeting's fully-assembled extraction output, ready for
// the DB-insertion phase.
type Result struct {
	Meeting MeetingPDF
	Docs    []models.ExtractedDocument
}

// Run drives the full boundary_detection -> content_extraction ->
// db_insertion -> complete state machine for the given meetings, resuming
// from the checkpoint at checkpointPath unless force is set.
func (s *Scheduler) Run(ctx context.Context, meetings []MeetingPDF, force bool) ([]Result, error) {
	state, err := LoadState(s.checkpointPath, force)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	if state.Phase == PhaseBoundaryDetection {
		if err := s.runBoundaryPhase(ctx, meetings, state); err != nil {
			return nil, fmt.Errorf("boundary phase: %w", err)
		}
		state.Phase = PhaseContentExtraction
		if err := SaveState(s.checkpointPath, state); err != nil {
			return nil, err
		}
	}

	if state.Phase == PhaseContentExtraction {
		items, _, err := s.planContentItems(ctx, meetings, state)
		if err != nil {
			return nil, fmt.Errorf("plan content items: %w", err)
		}
		if err := s.runContentPhase(ctx, items, state); err != nil {
			return nil, fmt.Errorf("content phase: %w", err)
		}
		state.Phase = PhaseDBInsertion
		if err := SaveState(s.checkpointPath, state); err != nil {
			return nil, err
		}
	}

	boundariesByMeeting, err := s.decodeAllBoundaries(meetings, state)
	if err != nil {
		return nil, fmt.Errorf("decode checkpointed boundaries: %w", err)
	}

	results, err := s.assembleResults(meetings, boundariesByMeeting, state)
	if err != nil {
		return nil, fmt.Errorf("assemble results: %w", err)
	}

	if state.Phase == PhaseDBInsertion {
		if s.db != nil {
			s.insertResults(ctx, results, state)
			if err := SaveState(s.checkpointPath, state); err != nil {
				return nil, err
			}
		}
		state.Phase = PhaseComplete
		if err := SaveState(s.checkpointPath, state); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// decodeBoundaries re-derives one meeting's merged boundary list from its
// raw checkpointed per-chunk JSON, so resuming from content_extraction or
// db_insertion never needs to re-run the boundary pass.
func (s *Scheduler) decodeBoundaries(m MeetingPDF, state *State) ([]models.Boundary, error) {
	plans := docextract.PlanChunks(m.PageCount)
	perChunk := make([][]models.Boundary, len(plans))
	for i := range plans {
		raw, ok := state.BoundaryResults[boundaryKey(m.Key, i)]
		if !ok {
			s.logger.Warn("missing boundary result for chunk", "meeting", m.Key, "chunk", i)
			continue
		}
		var docs []capability.BoundaryDocument
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return nil, fmt.Errorf("decode boundary chunk %d for %s: %w", i, m.Key, err)
		}
		bs := make([]models.Boundary, 0, len(docs))
		for _, d := range docs {
			bs = append(bs, docextract.ToBoundary(d))
		}
		perChunk[i] = bs
	}

	if len(plans) == 1 && plans[0].PageOffset == 0 {
		return docextract.RemoveOverlaps(perChunk[0]), nil
	}
	return docextract.MergeChunkedBoundaries(perChunk, plans), nil
}

func (s *Scheduler) decodeAllBoundaries(meetings []MeetingPDF, state *State) (map[string][]models.Boundary, error) {
	out := make(map[string][]models.Boundary, len(meetings))
	for _, m := range meetings {
		bs, err := s.decodeBoundaries(m, state)
		if err != nil {
			return nil, err
		}
		out[m.Key] = bs
	}
	return out, nil
}

// planContentItems slices every meeting's boundaries into standalone
// sub-PDFs ready for upload, sized so runContentPhase can pack them into
// byte-capped waves.
func (s *Scheduler) planContentItems(ctx context.Context, meetings []MeetingPDF, state *State) ([]ContentItem, map[string][]models.Boundary, error) {
	boundariesByMeeting, err := s.decodeAllBoundaries(meetings, state)
	if err != nil {
		return nil, nil, err
	}

	byKey := make(map[string]MeetingPDF, len(meetings))
	for _, m := range meetings {
		byKey[m.Key] = m
	}

	var items []ContentItem
	for key, boundaries := range boundariesByMeeting {
		m := byKey[key]
		for _, b := range boundaries {
			sliced, err := s.slicer.SlicePages(ctx, m.PDFBytes, b.PageStart, b.PageEnd)
			if err != nil {
				return nil, nil, fmt.Errorf("slice %s %d-%d: %w", m.Key, b.PageStart, b.PageEnd, err)
			}
			items = append(items, ContentItem{
				Key:       contentKey(m.Key, b.PageStart, b.PageEnd),
				PDFBytes:  sliced,
				FileBytes: int64(len(sliced)),
			})
		}
	}
	return items, boundariesByMeeting, nil
}

// runContentPhase packs content items into byte-capped waves and submits
// each as its own batch job, committing the wave to the checkpoint before
// starting the next so a crash mid-run only replays the in-flight wave.
func (s *Scheduler) runContentPhase(ctx context.Context, items []ContentItem, state *State) error {
	waves := planWaves(items, s.maxWaveBytes)
	for idx, wave := range waves {
		if state.waveComplete(idx) {
			continue
		}

		var uploaded []string
		var reqs []batchRequest
		for _, item := range wave {
			displayName := fmt.Sprintf("content-wave%d-%s", idx, item.Key)
			fileID, err := s.api.UploadFile(ctx, displayName, item.PDFBytes)
			if err != nil {
				return fmt.Errorf("upload %s: %w", displayName, err)
			}
			uploaded = append(uploaded, fileID)
			reqs = append(reqs, batchRequest{Key: item.Key, Kind: "content", FileID: fileID})
		}

		label := fmt.Sprintf("content-wave-%d", idx)
		responses, jobID, err := s.submitAndCollect(ctx, reqs, label)
		for _, id := range uploaded {
			if delErr := s.api.DeleteFile(ctx, id); delErr != nil {
				s.logger.Warn("cleanup wave upload failed", "file_id", id, "error", delErr)
			}
		}
		if err != nil {
			return err
		}

		for k, v := range responses {
			state.ContentResults[k] = v
		}
		state.ContentWaves = append(state.ContentWaves, WaveState{
			Wave: idx, JobID: jobID, Status: capability.BatchSucceeded, FileIDs: uploaded,
		})
		if err := SaveState(s.checkpointPath, state); err != nil {
			return err
		}
	}
	return nil
}

// assembleResults turns each meeting's merged boundaries plus their
// checkpointed content markdown into the final extracted documents,
// splitting and agenda-item-linking sections exactly as the synchronous
// pkg/docextract path does. A boundary whose content result never
// arrived (an unrecoverable per-request failure) is logged and skipped
// rather than aborting the whole meeting.
func (s *Scheduler) assembleResults(meetings []MeetingPDF, boundariesByMeeting map[string][]models.Boundary, state *State) ([]Result, error) {
	results := make([]Result, 0, len(meetings))
	for _, m := range meetings {
		var docs []models.ExtractedDocument
		for _, b := range boundariesByMeeting[m.Key] {
			markdown, ok := state.ContentResults[contentKey(m.Key, b.PageStart, b.PageEnd)]
			if !ok {
				s.logger.Warn("missing content result for boundary", "meeting", m.Key, "title", b.Title)
				continue
			}
			sections := docextract.SplitMarkdownSections(markdown)
			sections = docextract.SplitOversizedSections(sections)
			for i := range sections {
				sections[i].AgendaItemID = docextract.LinkAgendaItem(b.AgendaItem, m.AgendaItems)
				sections[i].PageStart = b.PageStart
				sections[i].PageEnd = b.PageEnd
			}
			docs = append(docs, models.ExtractedDocument{Boundary: b, Sections: sections})
		}
		results = append(results, Result{Meeting: m, Docs: docs})
	}
	return results, nil
}

// runBoundaryPhase uploads every meeting's PDF (chunking oversized ones
// per C2), submits one JSONL batch covering every chunk of every meeting,
// polls it to completion, and records the raw per-chunk boundary JSON in
// the checkpoint. Cleans up every uploaded file unconditionally, on
// success or failure, so a retried run doesn't leak remote storage.
func (s *Scheduler) runBoundaryPhase(ctx context.Context, meetings []MeetingPDF, state *State) error {
	var uploaded []string
	defer func() {
		for _, id := range uploaded {
			if err := s.api.DeleteFile(ctx, id); err != nil {
				s.logger.Warn("cleanup upload failed", "file_id", id, "error", err)
			}
		}
	}()

	var reqs []batchRequest
	for _, m := range meetings {
		plans := docextract.PlanChunks(m.PageCount)
		for i, plan := range plans {
			chunkBytes := m.PDFBytes
			if len(plans) > 1 {
				var sliceErr error
				if plan.OverlapPages > 0 {
					chunkBytes, sliceErr = s.slicer.SlicePagesWithHead(ctx, m.PDFBytes, plan.OverlapPages, plan.StartPage, plan.EndPage)
				} else {
					chunkBytes, sliceErr = s.slicer.SlicePages(ctx, m.PDFBytes, plan.StartPage, plan.EndPage)
				}
				if sliceErr != nil {
					return fmt.Errorf("slice boundary chunk %d for %s: %w", i, m.Key, sliceErr)
				}
			}
			displayName := fmt.Sprintf("%s-boundary-%d", m.Key, i)
			fileID, err := s.api.UploadFile(ctx, displayName, chunkBytes)
			if err != nil {
				return fmt.Errorf("upload %s: %w", displayName, err)
			}
			uploaded = append(uploaded, fileID)
			reqs = append(reqs, batchRequest{
				Key:       boundaryKey(m.Key, i),
				Kind:      "boundary",
				FileID:    fileID,
				PageStart: plan.StartPage,
				PageEnd:   plan.EndPage,
			})
		}
	}

	responses, _, err := s.submitAndCollect(ctx, reqs, "boundary-detection")
	if err != nil {
		return err
	}

	for k, v := range responses {
		state.BoundaryResults[k] = v
	}
	return SaveState(s.checkpointPath, state)
}

// boundaryKey namespaces a meeting's chunk index so multiple meetings'
// requests can share one JSONL submission.
func boundaryKey(meetingKey string, chunk int) string {
	return fmt.Sprintf("%s::chunk%d", meetingKey, chunk)
}

func contentKey(meetingKey string, pageStart, pageEnd int) string {
	return fmt.Sprintf("%s:%d-%d", meetingKey, pageStart, pageEnd)
}

// submitAndCollect uploads the assembled JSONL, submits the job, polls it
// to completion, and parses the results. A failed or cancelled job aborts
// the whole phase (the error policy's one hard-stop case); per-request
// errors inside a succeeded job are logged and simply withheld from the
// returned map.
func (s *Scheduler) submitAndCollect(ctx context.Context, reqs []batchRequest, label string) (map[string]string, string, error) {
	if len(reqs) == 0 {
		return map[string]string{}, "", nil
	}

	payload, err := buildJSONL(reqs)
	if err != nil {
		return nil, "", err
	}
	requestsFileID, err := s.api.UploadFile(ctx, label+"-requests.jsonl", payload)
	if err != nil {
		return nil, "", fmt.Errorf("upload %s requests: %w", label, err)
	}
	defer func() {
		if err := s.api.DeleteFile(ctx, requestsFileID); err != nil {
			s.logger.Warn("cleanup requests file failed", "file_id", requestsFileID, "error", err)
		}
	}()

	jobID, err := s.api.SubmitJob(ctx, requestsFileID, label)
	if err != nil {
		return nil, "", fmt.Errorf("submit %s job: %w", label, err)
	}

	for {
		status, err := s.api.PollJob(ctx, jobID)
		if err != nil {
			return nil, jobID, fmt.Errorf("poll %s job: %w", label, err)
		}
		switch status {
		case capability.BatchSucceeded:
			raw, err := s.api.DownloadResults(ctx, jobID)
			if err != nil {
				return nil, jobID, fmt.Errorf("download %s results: %w", label, err)
			}
			responses, errs, err := parseResults(raw)
			if err != nil {
				return nil, jobID, fmt.Errorf("parse %s results: %w", label, err)
			}
			for k, e := range errs {
				s.logger.Warn("request failed within batch", "phase", label, "key", k, "error", e)
			}
			return responses, jobID, nil
		case capability.BatchFailed, capability.BatchCancelled:
			return nil, jobID, fmt.Errorf("%s job %s ended in state %s", label, jobID, status)
		default:
			select {
			case <-ctx.Done():
				return nil, jobID, ctx.Err()
			case <-time.After(s.pollInterval):
			}
		}
	}
}
