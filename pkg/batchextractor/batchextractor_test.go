package batchextractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

func TestPlanWaves_PacksByCumulativeSize(t *testing.T) {
	items := []ContentItem{
		{Key: "a", FileBytes: 40},
		{Key: "b", FileBytes: 30},
		{Key: "c", FileBytes: 50},
		{Key: "d", FileBytes: 10},
	}
	waves := planWaves(items, 90)

	require.Len(t, waves, 2)
	var wave0Keys, wave1Keys []string
	for _, it := range waves[0] {
		wave0Keys = append(wave0Keys, it.Key)
	}
	for _, it := range waves[1] {
		wave1Keys = append(wave1Keys, it.Key)
	}
	// sorted ascending by size first: d(10), b(30), a(40), c(50)
	// wave0 packs d+b+a = 80 <= 90; c(50) alone would push it to 130, so it
	// starts wave1 instead.
	assert.Contains(t, wave0Keys, "d")
	assert.Contains(t, wave0Keys, "b")
	assert.Contains(t, wave0Keys, "a")
	assert.Equal(t, []string{"c"}, wave1Keys)
}

func TestPlanWaves_SingleOversizedItemGetsOwnWave(t *testing.T) {
	items := []ContentItem{{Key: "huge", FileBytes: 1000}}
	waves := planWaves(items, 10)
	require.Len(t, waves, 1)
	assert.Equal(t, "huge", waves[0][0].Key)
}

func TestLoadState_MissingFileReturnsFreshBoundaryPhase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s, err := LoadState(path, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseBoundaryDetection, s.Phase)
}

func TestSaveThenLoadState_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "checkpoint.json")
	s, err := LoadState(path, false)
	require.NoError(t, err)
	s.Phase = PhaseContentExtraction
	s.BoundaryResults["m1::chunk0"] = `[{"title":"x"}]`
	require.NoError(t, SaveState(path, s))

	reloaded, err := LoadState(path, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseContentExtraction, reloaded.Phase)
	assert.Equal(t, `[{"title":"x"}]`, reloaded.BoundaryResults["m1::chunk0"])
}

func TestLoadState_ForceDiscardsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s, _ := LoadState(path, false)
	s.Phase = PhaseComplete
	require.NoError(t, SaveState(path, s))

	fresh, err := LoadState(path, true)
	require.NoError(t, err)
	assert.Equal(t, PhaseBoundaryDetection, fresh.Phase)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadState_CorruptFileFallsBackToFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	s, err := LoadState(path, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseBoundaryDetection, s.Phase)
}

func TestWaveComplete_OnlySucceededCounts(t *testing.T) {
	s := newState()
	s.ContentWaves = []WaveState{
		{Wave: 0, Status: capability.BatchSucceeded},
		{Wave: 1, Status: capability.BatchFailed},
	}
	assert.True(t, s.waveComplete(0))
	assert.False(t, s.waveComplete(1))
	assert.False(t, s.waveComplete(2))
}

// fakeBatchAPI is an in-memory stand-in for a remote batch-processing
// provider. Every submitted job "succeeds" immediately, echoing back one
// response per request built by the supplied responder.
type fakeBatchAPI struct {
	mu        sync.Mutex
	files     map[string][]byte
	jobs      map[string][]byte // jobID -> requests JSONL
	responder func(req batchRequest) (string, error)
	nextID    int
}

func newFakeBatchAPI(responder func(batchRequest) (string, error)) *fakeBatchAPI {
	return &fakeBatchAPI{
		files:     make(map[string][]byte),
		jobs:      make(map[string][]byte),
		responder: responder,
	}
}

func (f *fakeBatchAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBatchAPI) UploadFile(ctx context.Context, displayName string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id("file")
	f.files[id] = data
	return id, nil
}

func (f *fakeBatchAPI) DeleteFile(ctx context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, fileID)
	return nil
}

func (f *fakeBatchAPI) SubmitJob(ctx context.Context, requestsFileID, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id("job")
	f.jobs[id] = f.files[requestsFileID]
	return id, nil
}

func (f *fakeBatchAPI) PollJob(ctx context.Context, jobID string) (capability.BatchJobStatus, error) {
	return capability.BatchSucceeded, nil
}

func (f *fakeBatchAPI) DownloadResults(ctx context.Context, jobID string) ([]byte, error) {
	f.mu.Lock()
	payload := f.jobs[jobID]
	f.mu.Unlock()

	dec := json.NewDecoder(bytes.NewReader(payload))
	var out []byte
	for dec.More() {
		var req batchRequest
		if err := dec.Decode(&req); err != nil {
			return nil, err
		}
		resp, err := f.responder(req)
		line, _ := json.Marshal(batchResponse{Key: req.Key, Response: resp, Error: errString(err)})
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type fakeSlicerFull struct{}

func (fakeSlicerFull) SlicePages(ctx context.Context, pdf []byte, startPage, endPage int) ([]byte, error) {
	return []byte("sliced"), nil
}

func (fakeSlicerFull) SlicePagesWithHead(ctx context.Context, pdf []byte, headPages, startPage, endPage int) ([]byte, error) {
	return []byte("sliced"), nil
}

func TestScheduler_RunAssemblesResultsAcrossBoundaryAndContentPhases(t *testing.T) {
	boundaryJSON, _ := json.Marshal([]capability.BoundaryDocument{
		{Title: "Staff Report", PageStart: 1, PageEnd: 3, Type: "staff_report", AgendaItem: "6.1"},
	})

	api := newFakeBatchAPI(func(req batchRequest) (string, error) {
		switch req.Kind {
		case "boundary":
			return string(boundaryJSON), nil
		case "content":
			return "## Summary\nApproved unanimously.", nil
		}
		return "", nil
	})

	sched := NewScheduler(api, fakeSlicerFull{}, nil, filepath.Join(t.TempDir(), "checkpoint.json"), 10*1024*1024, 1)

	meeting := MeetingPDF{
		Key:             "m1",
		DocumentID:      42,
		PDFBytes:        []byte("%PDF-1"),
		PageCount:       10,
		AgendaItems:     []models.AgendaItemRecord{{ItemOrder: "6.1"}},
		AgendaItemDBIDs: []int{101},
	}

	results, err := sched.Run(context.Background(), []MeetingPDF{meeting}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Docs, 1)
	require.Len(t, results[0].Docs[0].Sections, 1)
	assert.Equal(t, "Staff Report", results[0].Docs[0].Boundary.Title)
	assert.Contains(t, results[0].Docs[0].Sections[0].SectionText, "Approved unanimously")
	require.NotNil(t, results[0].Docs[0].Sections[0].AgendaItemID)
	assert.Equal(t, 0, *results[0].Docs[0].Sections[0].AgendaItemID)
}
