package batchextractor

import "sort"

// ContentItem is one page-range extraction unit queued for the content
// phase: a meeting's boundary plus the bytes of its sliced sub-PDF.
type ContentItem struct {
	Key       string // "<meetingKey>:<pageStart>-<pageEnd>", also the content_results lookup key
	PDFBytes  []byte
	FileBytes int64
}

// planWaves sorts items by size ascending, then greedily packs them into
// waves whose cumulative byte size stays at or under maxBytes — exactly
// batch_extractor.py's plan_waves.
func planWaves(items []ContentItem, maxBytes int64) [][]ContentItem {
	sorted := make([]ContentItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FileBytes < sorted[j].FileBytes })

	var waves [][]ContentItem
	var current []ContentItem
	var currentBytes int64

	for _, item := range sorted {
		if currentBytes+item.FileBytes > maxBytes && len(current) > 0 {
			waves = append(waves, current)
			current = []ContentItem{item}
			currentBytes = item.FileBytes
			continue
		}
		current = append(current, item)
		currentBytes += item.FileBytes
	}
	if len(current) > 0 {
		waves = append(waves, current)
	}
	return waves
}
