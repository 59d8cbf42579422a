package docextract

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// headingSizeRatio is the minimum ratio of a span's font size to the
// body-text font size for that span to be considered a heading.
const headingSizeRatio = 1.2

// repeatingHeaderThreshold is the occurrence count at or above which a heading
// is treated as a repeating page header/footer (e.g. a multi-page table's
// column header) and folded into a single merged section rather than
// producing one section per occurrence.
const repeatingHeaderThreshold = 5

var pageNumberRe = regexp.MustCompile(`^\s*(page\s*)?\d+(\s*of\s*\d+)?\s*$`)

var noiseHeadings = map[string]struct{}{
	"carried": {}, "defeated": {}, "or": {},
}

type textSpan struct {
	text     string
	fontSize float64
	bold     bool
	page     int
}

func allSpans(r *pdf.Reader) ([]textSpan, error) {
	var spans []textSpan
	for pageIdx := 1; pageIdx <= r.NumPage(); pageIdx++ {
		page := r.Page(pageIdx)
		content := page.Content()
		for _, t := range content.Text {
			spans = append(spans, textSpan{
				text:     t.S,
				fontSize: t.FontSize,
				bold:     strings.Contains(strings.ToLower(t.Font), "bold"),
				page:     pageIdx,
			})
		}
	}
	return spans, nil
}

func bodyFontSize(spans []textSpan) float64 {
	counts := make(map[float64]int)
	for _, s := range spans {
		counts[s.fontSize]++
	}
	best, bestCount := 0.0, 0
	for size, count := range counts {
		if count > bestCount {
			best, bestCount = size, count
		}
	}
	if best == 0 {
		return 10
	}
	return best
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func isNoiseHeading(text string) bool {
	clean := strings.ToLower(strings.TrimSpace(text))
	if _, ok := noiseHeadings[clean]; ok {
		return true
	}
	return pageNumberRe.MatchString(clean)
}

// HeuristicSections runs the font-size-frequency fallback chunker (§4.5)
// over a full agenda PDF when boundary detection failed outright: a span
// is a heading if its font size exceeds 1.2x the body size, or it's bold
// and ALL-CAPS. Known noise headings (CARRIED/DEFEATED/OR, page numbers)
// are reclassified as body text. A heading text occurring 5+ times is
// treated as a repeating page header and merged into one section.
func HeuristicSections(pdfBytes []byte) ([]models.Section, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	spans, err := allSpans(r)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, nil
	}
	body := bodyFontSize(spans)

	headingCount := make(map[string]int)
	isHeading := make([]bool, len(spans))
	for i, s := range spans {
		text := strings.TrimSpace(s.text)
		if text == "" {
			continue
		}
		heading := s.fontSize > headingSizeRatio*body || (s.bold && isAllCaps(text))
		if heading && isNoiseHeading(text) {
			heading = false
		}
		isHeading[i] = heading
		if heading {
			headingCount[text]++
		}
	}

	repeating := make(map[string]struct{})
	for text, count := range headingCount {
		if count >= repeatingHeaderThreshold {
			repeating[text] = struct{}{}
		}
	}

	type section struct {
		title      string
		body       strings.Builder
		pageStart  int
		pageEnd    int
		isRepeated bool
	}
	var sections []*section
	repeatedMerged := make(map[string]*section)

	appendBody := func(s *section, text string) {
		if s.body.Len() > 0 {
			s.body.WriteString("\n")
		}
		s.body.WriteString(text)
	}

	var current *section
	for i, sp := range spans {
		text := strings.TrimSpace(sp.text)
		if text == "" {
			continue
		}
		if isHeading[i] {
			if _, ok := repeating[text]; ok {
				if merged, exists := repeatedMerged[text]; exists {
					current = merged
					continue
				}
				merged := &section{title: text, pageStart: sp.page, pageEnd: sp.page, isRepeated: true}
				repeatedMerged[text] = merged
				sections = append(sections, merged)
				current = merged
				continue
			}
			current = &section{title: text, pageStart: sp.page, pageEnd: sp.page}
			sections = append(sections, current)
			continue
		}
		if current == nil {
			current = &section{title: "", pageStart: sp.page, pageEnd: sp.page}
			sections = append(sections, current)
		}
		appendBody(current, text)
		if sp.page > current.pageEnd {
			current.pageEnd = sp.page
		}
	}

	out := make([]models.Section, 0, len(sections))
	for i, s := range sections {
		out = append(out, models.Section{
			SectionTitle: s.title,
			SectionText:  strings.TrimSpace(s.body.String()),
			SectionOrder: i,
			PageStart:    s.pageStart,
			PageEnd:      s.pageEnd,
			TokenCount:   estimateTokenCount(s.body.String()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SectionOrder < out[j].SectionOrder })
	return SplitOversizedSections(out), nil
}
