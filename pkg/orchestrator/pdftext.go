package orchestrator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// loadAgendaText and loadMinutesText mirror orchestrator.py's context
// extraction ahead of diarization: prefer a cached agenda.md/minutes.md
// sidecar over re-parsing the PDF, and fall back to the first PDF found
// in the Agenda/Minutes subfolder. Neither returns an error for a
// missing file — an agenda-only or minutes-only meeting is routine, not
// a failure.

func loadAgendaText(meetingRoot string) string {
	return loadDocText(meetingRoot, "agenda.md", "Agenda")
}

func loadMinutesText(meetingRoot string) string {
	return loadDocText(meetingRoot, "minutes.md", "Minutes")
}

func loadDocText(meetingRoot, cacheName, subfolder string) string {
	cached := filepath.Join(meetingRoot, cacheName)
	if data, err := os.ReadFile(cached); err == nil {
		return string(data)
	}

	dir := filepath.Join(meetingRoot, subfolder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		text, err := extractPDFText(data)
		if err != nil {
			continue
		}
		return text
	}
	return ""
}

// extractPDFText ports extract_text_from_pdf, the same span-concatenation
// approach pkg/bylaw's extractFullText uses — this package carries no
// page-layout extraction library beyond the one ledongthuc/pdf reader
// both already share.
func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for pageIdx := 1; pageIdx <= r.NumPage(); pageIdx++ {
		page := r.Page(pageIdx)
		if page.V.IsNull() {
			continue
		}
		var b strings.Builder
		for _, t := range page.Content().Text {
			b.WriteString(t.S)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
