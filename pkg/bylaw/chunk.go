package bylaw

import "strings"

// defaultChunkSize and defaultChunkOverlap match the original's chunk_text
// defaults.
const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// textChunk is one overlapping window of a bylaw's full text.
type textChunk struct {
	text      string
	charStart int
	charEnd   int
}

// chunkText ports chunk_text: splits text into overlapping windows,
// preferring to break at the last newline (or ". " failing that) inside
// the window so words aren't cut mid-way, as long as that break isn't
// too far back (more than 30% of chunkSize lost). Chunks under 20
// trimmed characters are dropped as noise, matching the original.
func chunkText(text string, chunkSize, overlap int) []textChunk {
	if text == "" {
		return nil
	}

	var chunks []textChunk
	start := 0
	for start < len(text) {
		// end tracks the original's unclipped arithmetic (start+chunkSize,
		// or a break point found below) — start advances from THIS value,
		// not from the text-length-clipped slice bound, so the loop still
		// terminates once start runs past len(text) even on the final,
		// short window. Clipping end before that subtraction would leave
		// start stuck repeating the last window forever.
		end := start + chunkSize
		sliceEnd := min(end, len(text))
		window := text[start:sliceEnd]

		if end < len(text) {
			lastBreak := strings.LastIndex(window, "\n")
			if lastBreak == -1 {
				lastBreak = strings.LastIndex(window, ". ")
			}
			if lastBreak > int(float64(chunkSize)*0.7) {
				end = start + lastBreak + 1
				sliceEnd = end
				window = text[start:sliceEnd]
			}
		}

		trimmed := strings.TrimSpace(window)
		if len(trimmed) > 20 {
			chunks = append(chunks, textChunk{text: trimmed, charStart: start, charEnd: sliceEnd})
		}

		start = end - overlap
	}
	return chunks
}
