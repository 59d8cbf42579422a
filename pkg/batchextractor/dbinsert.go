package batchextractor

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/ent/documentimage"
	"github.com/viewroyal/civicpipe/ent/documentsection"
	"github.com/viewroyal/civicpipe/ent/extracteddocument"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// insertResults writes every meeting's extracted documents, deleting any
// rows already on file for that meeting's document_id first so a re-run
// (after a wave retry, or an operator re-queuing a meeting) never
// duplicates rows. Per-meeting failures are logged and the meeting is
// still recorded as inserted: the original's error policy treats a
// DB-insertion error as non-fatal to the batch run as a whole, unlike a
// batch-job failure which aborts the phase outright.
func (s *Scheduler) insertResults(ctx context.Context, results []Result, state *State) {
	for _, r := range results {
		if err := s.insertMeetingDocs(ctx, r.Meeting.DocumentID, r.Docs, r.Meeting.AgendaItemDBIDs); err != nil {
			s.logger.Error("db insertion failed for meeting", "meeting", r.Meeting.Key, "error", err)
			state.Errors[r.Meeting.Key] = err.Error()
		}
		state.MeetingsInserted = append(state.MeetingsInserted, r.Meeting.Key)
	}
}

func (s *Scheduler) insertMeetingDocs(ctx context.Context, documentID int, docs []models.ExtractedDocument, agendaItemDBIDs []int) error {
	if err := s.clearExtractedDocuments(ctx, documentID); err != nil {
		return fmt.Errorf("clear prior extraction rows: %w", err)
	}

	for _, doc := range docs {
		create := s.db.ExtractedDocument.Create().
			SetDocumentID(documentID).
			SetTitle(doc.Boundary.Title).
			SetPageStart(doc.Boundary.PageStart).
			SetPageEnd(doc.Boundary.PageEnd).
			SetDocType(extracteddocument.DocType(doc.Boundary.Type)).
			SetKeyFacts(doc.Boundary.KeyFacts)
		if doc.Boundary.AgendaItem != "" {
			create = create.SetAgendaItemRef(doc.Boundary.AgendaItem)
		}
		if doc.Boundary.Summary != "" {
			create = create.SetSummary(doc.Boundary.Summary)
		}
		// Every section of a boundary resolves against the same
		// boundary.AgendaItem string, so the first section's resolved
		// index (if any) also identifies the document-level link.
		if len(doc.Sections) > 0 && doc.Sections[0].AgendaItemID != nil {
			if idx := *doc.Sections[0].AgendaItemID; idx < len(agendaItemDBIDs) {
				create = create.SetAgendaItemID(agendaItemDBIDs[idx])
			}
		}

		row, err := create.Save(ctx)
		if err != nil {
			return fmt.Errorf("insert extracted_document %q: %w", doc.Boundary.Title, err)
		}

		for _, sec := range doc.Sections {
			secCreate := s.db.DocumentSection.Create().
				SetExtractedDocumentID(row.ID).
				SetSectionTitle(sec.SectionTitle).
				SetSectionText(sec.SectionText).
				SetSectionOrder(sec.SectionOrder).
				SetPageStart(sec.PageStart).
				SetPageEnd(sec.PageEnd).
				SetTokenCount(sec.TokenCount)
			if sec.AgendaItemID != nil && *sec.AgendaItemID < len(agendaItemDBIDs) {
				secCreate = secCreate.SetAgendaItemID(agendaItemDBIDs[*sec.AgendaItemID])
			}
			if _, err := secCreate.Save(ctx); err != nil {
				return fmt.Errorf("insert document_section %q: %w", sec.SectionTitle, err)
			}
		}
	}
	return nil
}

// clearExtractedDocuments deletes a document's prior extracted_documents
// rows along with their child document_sections/document_images, so
// insertMeetingDocs can recreate them from scratch (the same
// delete-then-reinsert idempotency pattern pkg/ingest uses for agenda
// items).
func (s *Scheduler) clearExtractedDocuments(ctx context.Context, documentID int) error {
	docIDs, err := s.db.ExtractedDocument.Query().
		Where(extracteddocument.DocumentID(documentID)).
		IDs(ctx)
	if err != nil {
		return err
	}
	if len(docIDs) == 0 {
		return nil
	}

	if _, err := s.db.DocumentSection.Delete().
		Where(documentsection.ExtractedDocumentIDIn(docIDs...)).
		Exec(ctx); err != nil {
		return err
	}
	if _, err := s.db.DocumentImage.Delete().
		Where(documentimage.ExtractedDocumentIDIn(docIDs...)).
		Exec(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExtractedDocument.Delete().
		Where(extracteddocument.IDIn(docIDs...)).
		Exec(ctx); err != nil {
		return err
	}
	return nil
}
