package bylaw

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/agendaitem"
	"github.com/viewroyal/civicpipe/ent/bylaw"
	"github.com/viewroyal/civicpipe/ent/matter"
)

// bylawNumInTextRe ports extract_bylaw_num's pattern: an optional
// "Amendment" prefix, then "Bylaw", an optional "No.", then the number.
var bylawNumInTextRe = regexp.MustCompile(`(?i)(?:Amendment\s+)?Bylaw\s+(?:No\.?\s*)?(\d+)`)

// extractBylawNum ports extract_bylaw_num: when text mentions
// "amendment", only matches at or after that word are considered, so an
// amendment bylaw's own number isn't shadowed by an earlier mention of
// the bylaw it amends.
func extractBylawNum(text string) string {
	if text == "" {
		return ""
	}
	if amendIdx := strings.Index(strings.ToLower(text), "amendment"); amendIdx != -1 {
		for _, m := range bylawNumInTextRe.FindAllStringSubmatchIndex(text, -1) {
			if m[0] >= amendIdx {
				return text[m[2]:m[3]]
			}
		}
	}
	m := bylawNumInTextRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// LinkStats summarizes one LinkMattersToBylaws run.
type LinkStats struct {
	Linked int
}

// LinkMattersToBylaws ports link_matters_to_bylaws: for every matter with
// no bylaw_id yet, look for a bylaw number first in its identifier, then
// its title, then (limited to 10) its agenda items' titles, and link the
// first match found.
func (ig *Ingester) LinkMattersToBylaws(ctx context.Context, municipalityID int) (LinkStats, error) {
	bylaws, err := ig.db.Bylaw.Query().Where(bylaw.MunicipalityID(municipalityID)).All(ctx)
	if err != nil {
		return LinkStats{}, fmt.Errorf("fetch bylaws: %w", err)
	}
	byNumber := make(map[string]int, len(bylaws))
	for _, b := range bylaws {
		if num := extractBylawNum(b.Number); num != "" {
			byNumber[num] = b.ID
		}
	}

	matters, err := ig.db.Matter.Query().
		Where(matter.MunicipalityID(municipalityID), matter.BylawIDIsNil()).
		All(ctx)
	if err != nil {
		return LinkStats{}, fmt.Errorf("fetch unlinked matters: %w", err)
	}

	var stats LinkStats
	for _, m := range matters {
		bylawID, reason := ig.matchBylaw(ctx, m, byNumber)
		if bylawID == 0 {
			continue
		}
		if err := ig.db.Matter.UpdateOne(m).SetBylawID(bylawID).Exec(ctx); err != nil {
			return stats, fmt.Errorf("link matter %d to bylaw %d: %w", m.ID, bylawID, err)
		}
		ig.logger.Info("linked matter to bylaw", "matter_id", m.ID, "bylaw_id", bylawID, "reason", reason)
		stats.Linked++
	}
	return stats, nil
}

func (ig *Ingester) matchBylaw(ctx context.Context, m *ent.Matter, byNumber map[string]int) (int, string) {
	if num := extractBylawNum(m.Identifier); num != "" {
		if id, ok := byNumber[num]; ok {
			return id, fmt.Sprintf("identifier match (%s)", num)
		}
	}
	if num := extractBylawNum(m.Title); num != "" {
		if id, ok := byNumber[num]; ok {
			return id, fmt.Sprintf("title match (%s)", num)
		}
	}

	items, err := ig.db.AgendaItem.Query().
		Where(agendaitem.MatterID(m.ID)).
		Limit(10).
		All(ctx)
	if err != nil {
		ig.logger.Warn("fetch agenda items for matter failed", "matter_id", m.ID, "error", err)
		return 0, ""
	}
	for _, item := range items {
		if num := extractBylawNum(item.Title); num != "" {
			if id, ok := byNumber[num]; ok {
				return id, fmt.Sprintf("agenda item match (%s)", num)
			}
		}
	}
	return 0, ""
}
