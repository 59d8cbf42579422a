package bylaw

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractFullText ports extract_text_from_pdf: concatenates every page's
// text, page breaks joined by a blank line. Uses the same span-based
// reader as pkg/docextract since this module carries no page-layout
// extraction library beyond it.
func extractFullText(data []byte) (string, error) {
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
