package docextract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

func TestRemoveOverlaps_DropsParentContainingSiblings(t *testing.T) {
	boundaries := []models.Boundary{
		{Title: "Full Agenda Package", PageStart: 1, PageEnd: 50},
		{Title: "Staff Report A", PageStart: 1, PageEnd: 20},
		{Title: "Staff Report B", PageStart: 21, PageEnd: 50},
	}
	out := RemoveOverlaps(boundaries)
	require.Len(t, out, 2)
	for _, b := range out {
		assert.NotEqual(t, "Full Agenda Package", b.Title)
	}
}

func TestPlanChunks_SmallPDFIsSingleChunk(t *testing.T) {
	plans := PlanChunks(40)
	require.Len(t, plans, 1)
	assert.Equal(t, 0, plans[0].PageOffset)
}

func TestPlanChunks_OversizedPDFSplitsWithOverlap(t *testing.T) {
	plans := PlanChunks(200)
	require.Greater(t, len(plans), 1)
	assert.Equal(t, 0, plans[0].PageOffset)
	assert.Greater(t, plans[1].PageOffset, 0)
	assert.Equal(t, 4, plans[1].OverlapPages)
}

func TestMergeChunkedBoundaries_DropsTOCRepeatAndShiftsPages(t *testing.T) {
	plans := PlanChunks(200)
	perChunk := make([][]models.Boundary, len(plans))
	perChunk[0] = []models.Boundary{{Title: "Item A", PageStart: 1, PageEnd: 10}}
	// Chunk 1 repeats the first overlapPages pages as TOC, then continues
	// from its own page 1 (= original pageOffset+1).
	perChunk[1] = []models.Boundary{
		{Title: "TOC Repeat", PageStart: 1, PageEnd: plans[1].OverlapPages},
		{Title: "Item B", PageStart: plans[1].OverlapPages + 1, PageEnd: plans[1].OverlapPages + 5},
	}

	merged := MergeChunkedBoundaries(perChunk, plans)

	var titles []string
	for _, b := range merged {
		titles = append(titles, b.Title)
	}
	assert.Contains(t, titles, "Item A")
	assert.Contains(t, titles, "Item B")
	assert.NotContains(t, titles, "TOC Repeat")

	for _, b := range merged {
		if b.Title == "Item B" {
			assert.Equal(t, plans[1].PageOffset+1, b.PageStart)
		}
	}
}

func TestSplitMarkdownSections_FoldsSubheadingsIntoParent(t *testing.T) {
	md := "## Background\nSome intro text.\n### Details\nMore detail.\n## Recommendation\nDo the thing."
	sections := SplitMarkdownSections(md)
	require.Len(t, sections, 2)
	assert.Equal(t, "Background", sections[0].SectionTitle)
	assert.Contains(t, sections[0].SectionText, "### Details")
	assert.Equal(t, "Recommendation", sections[1].SectionTitle)
}

func TestSplitOversizedSections_SplitsAndSuffixes(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("word ")
	}
	long := b.String()

	sections := []models.Section{{SectionTitle: "Big Report", SectionText: long}}
	out := SplitOversizedSections(sections)

	require.Greater(t, len(out), 1)
	assert.Contains(t, out[0].SectionTitle, "Big Report - Part 1 of")
	for i, s := range out {
		assert.Equal(t, i, s.SectionOrder)
		assert.LessOrEqual(t, len(s.SectionText), maxSectionChars)
	}
}

func TestLinkAgendaItem_ExactAndContainmentMatch(t *testing.T) {
	items := []models.AgendaItemRecord{
		{ItemOrder: "6.1"},
		{ItemOrder: "7"},
	}

	id := LinkAgendaItem("6.1a)", items)
	require.NotNil(t, id)
	assert.Equal(t, 0, *id)

	id = LinkAgendaItem("9.9", items)
	assert.Nil(t, id)

	id = LinkAgendaItem("", items)
	assert.Nil(t, id)
}

type fakeDocumentAI struct {
	boundaries []capability.BoundaryDocument
	markdown   string
}

func (f *fakeDocumentAI) DetectBoundaries(ctx context.Context, pdf []byte) ([]capability.BoundaryDocument, error) {
	return f.boundaries, nil
}

func (f *fakeDocumentAI) ExtractMarkdown(ctx context.Context, pdf []byte, pageStart, pageEnd int) (string, error) {
	return f.markdown, nil
}

type fakeSlicer struct{}

func (fakeSlicer) SlicePages(ctx context.Context, pdf []byte, startPage, endPage int) ([]byte, error) {
	return pdf, nil
}

func (fakeSlicer) SlicePagesWithHead(ctx context.Context, pdf []byte, headPages, startPage, endPage int) ([]byte, error) {
	return pdf, nil
}

func TestExtractor_ExtractRunsBothPasses(t *testing.T) {
	ai := &fakeDocumentAI{
		boundaries: []capability.BoundaryDocument{
			{Title: "Staff Report", PageStart: 1, PageEnd: 5, Type: "staff_report", AgendaItem: "6.1"},
		},
		markdown: "## Summary\nThe report recommends approval.",
	}
	ex := New(ai, fakeSlicer{})
	items := []models.AgendaItemRecord{{ItemOrder: "6.1"}}

	docs, err := ex.Extract(context.Background(), []byte("%PDF-fake"), PDFInfo{PageCount: 10}, items)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Sections, 1)
	require.NotNil(t, docs[0].Sections[0].AgendaItemID)
	assert.Equal(t, 0, *docs[0].Sections[0].AgendaItemID)
}
