// Package docextract implements the two-pass Document Extractor (§4.5):
// boundary detection splits an agenda PDF into sub-documents, content
// extraction turns each sub-document into linked markdown sections.
// Grounded on original_source/apps/pipeline/pipeline/ingestion/
// document_extractor.py (boundary/content passes, the overlap-removal and
// chunk-merge dedup rules, and the font-size heuristic fallback).
package docextract

import (
	"sort"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// maxInlinePages is the page-count threshold above which a PDF is split
// into chunks for the boundary pass (C2), mirroring the provider's
// inline/upload size cap.
const maxInlinePages = 80

func ToBoundary(b capability.BoundaryDocument) models.Boundary {
	return models.Boundary{
		Title:      b.Title,
		PageStart:  b.PageStart,
		PageEnd:    b.PageEnd,
		Type:       models.DocumentType(b.Type),
		AgendaItem: b.AgendaItem,
		Summary:    b.Summary,
		KeyFacts:   b.KeyFacts,
	}
}

// RemoveOverlaps enforces C1: page ranges must not overlap, and any
// "parent" entry that fully contains at least one sibling's page range is
// dropped in favor of the finer-grained siblings.
func RemoveOverlaps(boundaries []models.Boundary) []models.Boundary {
	contains := func(outer, inner models.Boundary) bool {
		return outer.PageStart <= inner.PageStart && outer.PageEnd >= inner.PageEnd &&
			(outer.PageStart != inner.PageStart || outer.PageEnd != inner.PageEnd)
	}

	drop := make(map[int]bool)
	for i, outer := range boundaries {
		for j, inner := range boundaries {
			if i == j {
				continue
			}
			if contains(outer, inner) {
				drop[i] = true
				break
			}
		}
	}

	out := make([]models.Boundary, 0, len(boundaries))
	for i, b := range boundaries {
		if !drop[i] {
			out = append(out, b)
		}
	}
	return out
}

// ChunkPlan is one chunk's page window within the original PDF, used to
// split an oversized PDF for the boundary pass (C2).
type ChunkPlan struct {
	StartPage    int // 1-based, inclusive, first content page (post-TOC-repeat)
	EndPage      int
	PageOffset   int // pages to shift a chunk-relative page number back to the original numbering
	OverlapPages int
}

// PlanChunks splits a PDF of more than maxInlinePages pages into fixed
// windows of maxInlinePages-4 content pages; every chunk after the first
// also carries a repeated 4-page TOC head (OverlapPages), so each chunk
// fits within maxInlinePages, per C2.
func PlanChunks(totalPages int) []ChunkPlan {
	if totalPages <= maxInlinePages {
		return []ChunkPlan{{StartPage: 1, EndPage: totalPages, PageOffset: 0, OverlapPages: 0}}
	}

	overlapPages := 4
	if totalPages < overlapPages {
		overlapPages = totalPages
	}

	chunkSize := maxInlinePages - overlapPages
	for chunkSize < 1 {
		// Degenerate case: even a single content page plus the TOC repeat
		// blows the cap. Halve the overlap instead of looping forever.
		overlapPages /= 2
		chunkSize = maxInlinePages - overlapPages
	}

	var plans []ChunkPlan
	for start := 1; start <= totalPages; start += chunkSize {
		end := start + chunkSize - 1
		if end > totalPages {
			end = totalPages
		}
		offset := start - 1
		if offset == 0 {
			plans = append(plans, ChunkPlan{StartPage: start, EndPage: end, PageOffset: 0, OverlapPages: 0})
			continue
		}
		plans = append(plans, ChunkPlan{StartPage: start, EndPage: end, PageOffset: offset, OverlapPages: overlapPages})
	}
	return plans
}

// MergeChunkedBoundaries combines per-chunk boundary results back into
// original-document page numbers, per C2: entries whose page_start falls
// within the repeated TOC head are dropped (chunks after the first only),
// the rest are shifted by page_offset-overlap_pages, and the combined list
// is deduped by (title, page_start).
func MergeChunkedBoundaries(perChunk [][]models.Boundary, plans []ChunkPlan) []models.Boundary {
	type key struct {
		title string
		start int
	}
	seen := make(map[key]struct{})

	var merged []models.Boundary
	for i, boundaries := range perChunk {
		plan := plans[i]
		for _, b := range boundaries {
			if plan.PageOffset > 0 && b.PageStart <= plan.OverlapPages {
				continue
			}
			shift := plan.PageOffset - plan.OverlapPages
			if shift < 0 {
				shift = 0
			}
			b.PageStart += shift
			b.PageEnd += shift

			k := key{title: b.Title, start: b.PageStart}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, b)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].PageStart < merged[j].PageStart })
	return RemoveOverlaps(merged)
}
