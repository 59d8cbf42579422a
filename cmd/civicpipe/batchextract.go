package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/agendaitem"
	"github.com/viewroyal/civicpipe/ent/document"
	"github.com/viewroyal/civicpipe/ent/meeting"
	"github.com/viewroyal/civicpipe/pkg/batchextractor"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// runBatchExtract builds the wave scheduler's meeting worklist from every
// meeting on file with an agenda PDF, then drives the two-pass
// boundary/content batch run over all of them (§4.6). Nothing in the
// existing pipeline ever created a documents row for an agenda package —
// ingest only records has_agenda — so this is also the first write path
// for that table, find-or-create per meeting the same way
// resolveMunicipality finds-or-creates its own row.
func runBatchExtract(ctx context.Context, c *components, archiveRoot string, force bool) error {
	meetings, err := c.db.Meeting.Query().
		Where(meeting.MunicipalityID(c.municipalityID), meeting.HasAgenda(true), meeting.ArchivePathNotNil()).
		All(ctx)
	if err != nil {
		return fmt.Errorf("list meetings with agendas: %w", err)
	}

	var jobs []batchextractor.MeetingPDF
	for _, m := range meetings {
		job, err := buildMeetingPDF(ctx, c, archiveRoot, m)
		if err != nil {
			slog.Error("skipping meeting for batch extraction", "meeting_id", m.ID, "error", err)
			continue
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
	}

	slog.Info("batch-extract: meetings queued", "count", len(jobs))
	results, err := c.batchScheduler.Run(ctx, jobs, force)
	if err != nil {
		return fmt.Errorf("run batch scheduler: %w", err)
	}
	slog.Info("batch-extract complete", "meetings", len(results))
	return nil
}

// buildMeetingPDF locates a meeting's agenda package PDF on disk,
// find-or-creates its documents row, and loads the already-ingested
// agenda items the extracted sections will link against.
func buildMeetingPDF(ctx context.Context, c *components, archiveRoot string, m *ent.Meeting) (*batchextractor.MeetingPDF, error) {
	if m.ArchivePath == nil {
		return nil, fmt.Errorf("meeting has no archive_path")
	}
	pdfPath, err := findAgendaPDF(filepath.Join(archiveRoot, *m.ArchivePath))
	if err != nil {
		return nil, err
	}
	if pdfPath == "" {
		return nil, fmt.Errorf("has_agenda=true but no PDF found under Agenda/")
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pdfPath, err)
	}

	docRow, pageCount, err := findOrCreateDocument(ctx, c, m.ID, data)
	if err != nil {
		return nil, fmt.Errorf("find-or-create document: %w", err)
	}

	items, err := c.db.AgendaItem.Query().
		Where(agendaitem.MeetingID(m.ID)).
		Order(ent.Asc(agendaitem.FieldID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agenda items: %w", err)
	}
	records := make([]models.AgendaItemRecord, len(items))
	dbIDs := make([]int, len(items))
	for i, item := range items {
		records[i] = models.AgendaItemRecord{ItemOrder: item.ItemOrder, Title: item.Title}
		dbIDs[i] = item.ID
	}

	return &batchextractor.MeetingPDF{
		Key:             fmt.Sprintf("%d", m.ID),
		DocumentID:      docRow.ID,
		PDFBytes:        data,
		PageCount:       pageCount,
		AgendaItems:     records,
		AgendaItemDBIDs: dbIDs,
	}, nil
}

// findOrCreateDocument resolves the meeting's agenda_package documents
// row, uploading to the blob store and counting pages only the first
// time a meeting is queued.
func findOrCreateDocument(ctx context.Context, c *components, meetingID int, pdfBytes []byte) (*ent.Document, int, error) {
	existing, err := c.db.Document.Query().
		Where(document.MeetingID(meetingID), document.KindEQ("agenda_package")).
		Only(ctx)
	if err == nil {
		pageCount := 0
		if existing.PageCount != nil {
			pageCount = *existing.PageCount
		}
		return existing, pageCount, nil
	}
	if !ent.IsNotFound(err) {
		return nil, 0, fmt.Errorf("query document: %w", err)
	}

	pageCount, err := countPDFPages(pdfBytes)
	if err != nil {
		return nil, 0, fmt.Errorf("count pages: %w", err)
	}

	sum := sha256.Sum256(pdfBytes)
	hash := hex.EncodeToString(sum[:])

	key, err := c.blobs.Put(ctx, pdfBytes)
	if err != nil {
		return nil, 0, fmt.Errorf("store blob: %w", err)
	}

	created, err := c.db.Document.Create().
		SetMeetingID(meetingID).
		SetKind("agenda_package").
		SetBlobKey(key).
		SetPageCount(pageCount).
		SetContentHash(hash).
		Save(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("create document: %w", err)
	}
	return created, pageCount, nil
}

func countPDFPages(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return r.NumPage(), nil
}

// findAgendaPDF returns the first PDF under meetingRoot/Agenda, the same
// subfolder convention pkg/orchestrator's loadAgendaText uses.
func findAgendaPDF(meetingRoot string) (string, error) {
	dir := filepath.Join(meetingRoot, "Agenda")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		return filepath.Join(dir, e.Name()), nil
	}
	return "", nil
}
