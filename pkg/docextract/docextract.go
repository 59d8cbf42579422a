package docextract

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// PDFInfo is the minimal page-count metadata the caller supplies about an
// agenda PDF, so the boundary pass can decide whether to chunk it (C2)
// without this package needing its own page-count probe for the common
// (LLM-native) path.
type PDFInfo struct {
	PageCount int
}

type Extractor struct {
	ai     capability.DocumentAI
	slicer capability.PDFSlicer
}

func New(ai capability.DocumentAI, slicer capability.PDFSlicer) *Extractor {
	return &Extractor{ai: ai, slicer: slicer}
}

// DetectBoundaries runs pass 1 over an agenda PDF, transparently chunking
// oversized PDFs (C2) and deduping overlapping/contained entries (C1).
func (e *Extractor) DetectBoundaries(ctx context.Context, pdfBytes []byte, info PDFInfo) ([]models.Boundary, error) {
	plans := PlanChunks(info.PageCount)
	if len(plans) == 1 && plans[0].PageOffset == 0 {
		raw, err := e.ai.DetectBoundaries(ctx, pdfBytes)
		if err != nil {
			return nil, fmt.Errorf("detect boundaries: %w", err)
		}
		out := make([]models.Boundary, 0, len(raw))
		for _, b := range raw {
			out = append(out, ToBoundary(b))
		}
		return RemoveOverlaps(out), nil
	}

	perChunk := make([][]models.Boundary, len(plans))
	for i, plan := range plans {
		var chunk []byte
		var err error
		if plan.OverlapPages > 0 {
			chunk, err = e.slicer.SlicePagesWithHead(ctx, pdfBytes, plan.OverlapPages, plan.StartPage, plan.EndPage)
		} else {
			chunk, err = e.slicer.SlicePages(ctx, pdfBytes, plan.StartPage, plan.EndPage)
		}
		if err != nil {
			return nil, fmt.Errorf("slice chunk %d: %w", i, err)
		}
		raw, err := e.ai.DetectBoundaries(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("detect boundaries chunk %d: %w", i, err)
		}
		bs := make([]models.Boundary, 0, len(raw))
		for _, b := range raw {
			bs = append(bs, ToBoundary(b))
		}
		perChunk[i] = bs
	}

	return MergeChunkedBoundaries(perChunk, plans), nil
}

// ExtractContent runs pass 2 for one boundary: ask the LLM for markdown,
// split it into sections, and link each to an agenda item.
func (e *Extractor) ExtractContent(ctx context.Context, pdfBytes []byte, boundary models.Boundary, agendaItems []models.AgendaItemRecord) (models.ExtractedDocument, error) {
	markdown, err := e.ai.ExtractMarkdown(ctx, pdfBytes, boundary.PageStart, boundary.PageEnd)
	if err != nil {
		return models.ExtractedDocument{}, fmt.Errorf("extract markdown for %q: %w", boundary.Title, err)
	}

	sections := SplitMarkdownSections(markdown)
	sections = SplitOversizedSections(sections)
	for i := range sections {
		sections[i].AgendaItemID = LinkAgendaItem(boundary.AgendaItem, agendaItems)
		sections[i].PageStart = boundary.PageStart
		sections[i].PageEnd = boundary.PageEnd
	}

	return models.ExtractedDocument{Boundary: boundary, Sections: sections}, nil
}

// Extract runs both passes for every boundary found in an agenda PDF.
func (e *Extractor) Extract(ctx context.Context, pdfBytes []byte, info PDFInfo, agendaItems []models.AgendaItemRecord) ([]models.ExtractedDocument, error) {
	boundaries, err := e.DetectBoundaries(ctx, pdfBytes, info)
	if err != nil {
		return nil, err
	}

	out := make([]models.ExtractedDocument, 0, len(boundaries))
	for _, b := range boundaries {
		pageBytes, err := e.slicer.SlicePages(ctx, pdfBytes, b.PageStart, b.PageEnd)
		if err != nil {
			return nil, fmt.Errorf("slice boundary %q: %w", b.Title, err)
		}
		doc, err := e.ExtractContent(ctx, pageBytes, b, agendaItems)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
