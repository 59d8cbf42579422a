package docextract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// maxSectionChars is the per-section length past which a section is split
// further at paragraph boundaries.
const maxSectionChars = 8000

var (
	h2Re = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	h3Re = regexp.MustCompile(`(?m)^###\s+(.+)$`)
)

// SplitMarkdownSections splits markdown at "##" headings into sections;
// "###" subheadings are folded into their enclosing "##" section rather
// than becoming sections of their own. Text before the first "##" heading
// (if any) becomes an untitled leading section.
func SplitMarkdownSections(markdown string) []models.Section {
	locs := h2Re.FindAllStringSubmatchIndex(markdown, -1)
	if len(locs) == 0 {
		return []models.Section{{SectionTitle: "", SectionText: strings.TrimSpace(markdown), SectionOrder: 0}}
	}

	var sections []models.Section
	if locs[0][0] > 0 {
		lead := strings.TrimSpace(markdown[:locs[0][0]])
		if lead != "" {
			sections = append(sections, models.Section{SectionTitle: "", SectionText: lead, SectionOrder: 0})
		}
	}

	for i, loc := range locs {
		title := strings.TrimSpace(markdown[loc[2]:loc[3]])
		bodyStart := loc[1]
		bodyEnd := len(markdown)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := strings.TrimSpace(markdown[bodyStart:bodyEnd])
		sections = append(sections, models.Section{SectionTitle: title, SectionText: body, SectionOrder: len(sections)})
	}
	return sections
}

// SplitOversizedSections applies the 8000-char paragraph-boundary split
// (" - Part N of M" suffix) to any section exceeding maxSectionChars, and
// renumbers section_order across the expanded list.
func SplitOversizedSections(sections []models.Section) []models.Section {
	var out []models.Section
	for _, s := range sections {
		if len(s.SectionText) <= maxSectionChars {
			out = append(out, s)
			continue
		}

		parts := splitAtParagraphs(s.SectionText, maxSectionChars)
		for i, part := range parts {
			title := s.SectionTitle
			if len(parts) > 1 {
				title = fmt.Sprintf("%s - Part %d of %d", s.SectionTitle, i+1, len(parts))
			}
			out = append(out, models.Section{
				SectionTitle: title,
				SectionText:  part,
				PageStart:    s.PageStart,
				PageEnd:      s.PageEnd,
			})
		}
	}
	for i := range out {
		out[i].SectionOrder = i
		out[i].TokenCount = estimateTokenCount(out[i].SectionText)
	}
	return out
}

// splitAtParagraphs greedily packs paragraphs (blank-line separated) into
// chunks no larger than maxChars, splitting a single over-long paragraph
// outright if it alone exceeds maxChars.
func splitAtParagraphs(text string, maxChars int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		if current.Len()+len(p)+2 > maxChars && current.Len() > 0 {
			flush()
		}
		if len(p) > maxChars {
			flush()
			for len(p) > maxChars {
				chunks = append(chunks, p[:maxChars])
				p = p[maxChars:]
			}
			if p != "" {
				current.WriteString(p)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// estimateTokenCount approximates token_count ≈ words × 1.3, the rule of
// thumb the teacher's own structured-output budgeting uses.
func estimateTokenCount(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.3)
}

// normalizeItemOrder strips trailing "." / ")" punctuation, lowercases,
// and trims whitespace, so "6.1a)" and "6.1a" compare equal.
func normalizeItemOrder(s string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), ".)"))
}

// LinkAgendaItem resolves a boundary's agenda_item string against the
// meeting's agenda items: exact match on normalized item order first,
// then containment either direction, else unresolved (nil).
func LinkAgendaItem(agendaItem string, items []models.AgendaItemRecord) *int {
	if agendaItem == "" {
		return nil
	}
	target := normalizeItemOrder(agendaItem)
	if target == "" {
		return nil
	}

	for i, item := range items {
		if normalizeItemOrder(item.ItemOrder) == target {
			id := i
			return &id
		}
	}
	for i, item := range items {
		order := normalizeItemOrder(item.ItemOrder)
		if order != "" && (strings.Contains(target, order) || strings.Contains(order, target)) {
			id := i
			return &id
		}
	}
	return nil
}
