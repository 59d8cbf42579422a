package diarizer

import (
	"sort"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// mergeResults assigns each STT segment the diarization label with maximum
// temporal overlap, applies any fingerprint speaker_mapping, and cleans
// SPEAKER_N labels to Speaker_N. Segments with no overlapping diarization
// span fall back to Speaker_Unknown at zero confidence.
func mergeResults(stt []models.RawSTTSegment, diarization []models.DiarizationSegment, speakerMapping map[string]string) []models.TranscriptSegment {
	if len(diarization) == 0 {
		out := make([]models.TranscriptSegment, len(stt))
		for i, seg := range stt {
			out[i] = models.TranscriptSegment{
				Start:             seg.Start,
				End:               seg.End,
				Text:              seg.Text,
				Speaker:           "Speaker_Unknown",
				SpeakerConfidence: 0,
			}
		}
		return out
	}

	sorted := make([]models.DiarizationSegment, len(diarization))
	copy(sorted, diarization)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := make([]models.TranscriptSegment, 0, len(stt))
	for _, seg := range stt {
		bestSpeaker := "Speaker_Unknown"
		bestOverlap := 0.0

		for _, d := range sorted {
			overlapStart := max(seg.Start, d.Start)
			overlapEnd := min(seg.End, d.End)
			overlap := overlapEnd - overlapStart
			if overlap < 0 {
				overlap = 0
			}
			if overlap > bestOverlap {
				bestOverlap = overlap
				bestSpeaker = d.SpeakerLabel
			}
		}

		displaySpeaker := bestSpeaker
		if mapped, ok := speakerMapping[bestSpeaker]; ok {
			displaySpeaker = mapped
		}
		displaySpeaker = cleanSpeakerLabel(displaySpeaker)

		duration := seg.End - seg.Start
		confidence := 0.0
		if duration > 0 {
			confidence = bestOverlap / duration
		}

		merged = append(merged, models.TranscriptSegment{
			Start:             seg.Start,
			End:               seg.End,
			Text:              seg.Text,
			Speaker:           displaySpeaker,
			SpeakerConfidence: roundTo3(confidence),
		})
	}

	return merged
}

// cleanSpeakerLabel rewrites a raw "SPEAKER_00" style label (senko's native
// form) to the "Speaker_0" form the refiner and transcript UI expect.
// Labels already resolved to a person's name by fingerprint matching pass
// through untouched.
func cleanSpeakerLabel(label string) string {
	if !strings.HasPrefix(label, "SPEAKER_") {
		return label
	}
	num := strings.TrimLeft(strings.TrimPrefix(label, "SPEAKER_"), "0")
	if num == "" {
		num = "0"
	}
	return "Speaker_" + num
}

func roundTo3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}

// buildSpeakerSamples records, for each diarization label's first
// occurrence, a playback clip start/end bounded to maxDuration — used for
// the "who does this label sound like" UI affordance.
func buildSpeakerSamples(diarization []models.DiarizationSegment, maxDuration float64) map[string]models.SpeakerSample {
	samples := make(map[string]models.SpeakerSample)
	for _, seg := range diarization {
		if seg.SpeakerLabel == "" {
			continue
		}
		if _, seen := samples[seg.SpeakerLabel]; seen {
			continue
		}
		end := min(seg.End, seg.Start+maxDuration)
		samples[seg.SpeakerLabel] = models.SpeakerSample{Start: seg.Start, End: end}
	}
	return samples
}
