package acquirer

import (
	"strings"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// matchVideo picks the one recording in videos that belongs in
// folderName, per §4.3: if only one exists for the date, use it
// unconditionally; otherwise disambiguate by folder-name keyword against
// the recording's title. Grounded on orchestrator.py's
// _download_vimeo_content matching ladder — public hearing, then
// committee-of-the-whole/cow, then council (preferring a non-public-
// hearing council video, falling back to any council-titled one).
func matchVideo(folderName string, videos []capability.VideoRecording) *capability.VideoRecording {
	if len(videos) == 0 {
		return nil
	}
	if len(videos) == 1 {
		return &videos[0]
	}

	folderLower := strings.ToLower(folderName)

	titleContains := func(v capability.VideoRecording, subs ...string) bool {
		title := strings.ToLower(v.Title)
		for _, s := range subs {
			if strings.Contains(title, s) {
				return true
			}
		}
		return false
	}

	find := func(pred func(capability.VideoRecording) bool) *capability.VideoRecording {
		for i := range videos {
			if pred(videos[i]) {
				return &videos[i]
			}
		}
		return nil
	}

	switch {
	case strings.Contains(folderLower, "public hearing"):
		return find(func(v capability.VideoRecording) bool {
			return titleContains(v, "public hearing")
		})

	case strings.Contains(folderLower, "committee of the whole") || strings.Contains(folderLower, "cow"):
		return find(func(v capability.VideoRecording) bool {
			return titleContains(v, "committee of the whole", "cow")
		})

	case strings.Contains(folderLower, "council"):
		if m := find(func(v capability.VideoRecording) bool {
			return titleContains(v, "council") && !titleContains(v, "public hearing")
		}); m != nil {
			return m
		}
		return find(func(v capability.VideoRecording) bool {
			return titleContains(v, "council")
		})
	}

	return nil
}
