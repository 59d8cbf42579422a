package refiner

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/pkg/models"
)

const mapReduceOverlapChars = 1000

// chunkTranscript splits text into overlapping windows of at most
// r.cfg.MapReduceChunkChars characters, the same sliding-window scheme
// ai_refiner.py's _refine_local_map_reduce uses.
func (r *Refiner) chunkTranscript(text string) []string {
	size := r.cfg.MapReduceChunkChars
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		next := end - mapReduceOverlapChars
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// refineMapReduce chunks the transcript, refines each chunk independently,
// and merges the per-chunk refinements.
func (r *Refiner) refineMapReduce(ctx context.Context, in Input, masked string) (*models.MeetingRefinement, error) {
	chunks := r.chunkTranscript(masked)
	r.logger.Info("map-reduce chunking", "chunks", len(chunks))

	var results []*models.MeetingRefinement
	for i, chunk := range chunks {
		prompt := buildRefinementPrompt(in, chunk)
		prompt += fmt.Sprintf("\n\nNOTE: this is part %d of %d of the transcript. Only extract items discussed in this segment.", i+1, len(chunks))

		res, err := r.call(ctx, prompt, fmt.Sprintf("map-reduce-chunk-%d", i+1))
		if err != nil {
			r.logger.Warn("map-reduce chunk failed, skipping", "chunk", i+1, "error", err)
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("map-reduce: every transcript chunk failed refinement")
	}
	return mergeRefinements(results), nil
}

// mergeRefinements combines independently-refined transcript chunks into
// one MeetingRefinement: union attendees, dedup aliases/corrections by
// key, and merge agenda items by title (concatenating debate summaries,
// extending quotes/motions, and taking the widest discussion window).
// Grounded on ai_refiner.py's _merge_refinements.
func mergeRefinements(results []*models.MeetingRefinement) *models.MeetingRefinement {
	base := *results[0]

	attendeeSet := make(map[string]struct{})
	for _, a := range base.Attendees {
		attendeeSet[a] = struct{}{}
	}
	aliasByLabel := make(map[string]models.SpeakerAlias)
	for _, a := range base.SpeakerAliases {
		aliasByLabel[a.Label] = a
	}
	correctionByText := make(map[string]models.TranscriptCorrection)
	for _, c := range base.TranscriptCorrections {
		correctionByText[c.OriginalText] = c
	}

	for _, r := range results[1:] {
		for _, a := range r.Attendees {
			attendeeSet[a] = struct{}{}
		}
		for _, a := range r.SpeakerAliases {
			aliasByLabel[a.Label] = a
		}
		for _, c := range r.TranscriptCorrections {
			correctionByText[c.OriginalText] = c
		}
	}

	itemOrder := make([]string, 0)
	itemByTitle := make(map[string]*models.AgendaItemRecord)
	for _, r := range results {
		for i := range r.Items {
			item := r.Items[i]
			existing, ok := itemByTitle[item.Title]
			if !ok {
				copied := item
				itemByTitle[item.Title] = &copied
				itemOrder = append(itemOrder, item.Title)
				continue
			}
			mergeAgendaItem(existing, &item)
		}
	}

	merged := base
	merged.Attendees = setToSlice(attendeeSet)
	merged.SpeakerAliases = aliasMapToSlice(aliasByLabel)
	merged.TranscriptCorrections = correctionMapToSlice(correctionByText)
	merged.Items = make([]models.AgendaItemRecord, 0, len(itemOrder))
	for _, title := range itemOrder {
		merged.Items = append(merged.Items, *itemByTitle[title])
	}
	return &merged
}

func mergeAgendaItem(existing, item *models.AgendaItemRecord) {
	switch {
	case item.DebateSummary != "" && existing.DebateSummary == "":
		existing.DebateSummary = item.DebateSummary
	case item.DebateSummary != "":
		existing.DebateSummary += "\n" + item.DebateSummary
	}

	existing.KeyQuotes = append(existing.KeyQuotes, item.KeyQuotes...)
	existing.Motions = append(existing.Motions, item.Motions...)
	existing.KeyStatements = append(existing.KeyStatements, item.KeyStatements...)

	if item.DiscussionStartTime != nil {
		if existing.DiscussionStartTime == nil || *item.DiscussionStartTime < *existing.DiscussionStartTime {
			existing.DiscussionStartTime = item.DiscussionStartTime
		}
	}
	if item.DiscussionEndTime != nil {
		if existing.DiscussionEndTime == nil || *item.DiscussionEndTime > *existing.DiscussionEndTime {
			existing.DiscussionEndTime = item.DiscussionEndTime
		}
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func aliasMapToSlice(m map[string]models.SpeakerAlias) []models.SpeakerAlias {
	out := make([]models.SpeakerAlias, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func correctionMapToSlice(m map[string]models.TranscriptCorrection) []models.TranscriptCorrection {
	out := make([]models.TranscriptCorrection, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
