package embedder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// fetchRows resolves spec's fetch (standard select or a table's
// CustomFetch) into the flat (id, text) pairs EmbedTable batches over.
func (e *Embedder) fetchRows(ctx context.Context, table string, spec TableSpec, force bool) ([]idText, error) {
	if spec.CustomFetch != nil {
		return spec.CustomFetch(ctx, e.db, force)
	}

	cols := append([]string{"id"}, spec.SelectColumns...)
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	if !force {
		q += " WHERE embedding IS NULL"
	}
	q += " ORDER BY id"

	rows, err := e.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []idText
	for rows.Next() {
		var id int
		vals := make([]*string, len(spec.SelectColumns))
		dest := make([]any, 0, len(vals)+1)
		dest = append(dest, &id)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, idText{id: id, text: spec.TextFn(vals)})
	}
	return out, rows.Err()
}

// fetchAgendaItems is agenda_items' CustomFetch: it joins in the
// meeting's transcript segments that fall inside the item's discussion
// time window, so the embedded text captures what was actually discussed
// and not just the agenda blurb. Segments aren't linked to an agenda item
// directly (no agenda_item_id on transcript_segments) — time-window
// overlap against discussion_start_time/discussion_end_time is the only
// join available, matching the original's fallback path for untagged
// segments.
func fetchAgendaItems(ctx context.Context, db *sql.DB, force bool) ([]idText, error) {
	where := ""
	if !force {
		where = "WHERE ai.embedding IS NULL"
	}
	q := fmt.Sprintf(`
		SELECT ai.id, ai.title, ai.plain_english_summary, ai.debate_summary,
		       ai.discussion_start_time, ai.discussion_end_time, ai.meeting_id
		FROM agenda_items ai
		%s
		ORDER BY ai.id`, where)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch agenda_items: %w", err)
	}

	type item struct {
		id                     int
		title, summary, debate *string
		start, end             *float64
		meetingID              int
	}
	var items []item
	meetingIDs := map[int]struct{}{}
	for rows.Next() {
		var it item
		if err := rows.Scan(&it.id, &it.title, &it.summary, &it.debate, &it.start, &it.end, &it.meetingID); err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, it)
		meetingIDs[it.meetingID] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	type segment struct {
		speaker   *string
		text      string
		startTime float64
	}
	segmentsByMeeting := map[int][]segment{}

	ids := make([]int, 0, len(meetingIDs))
	for id := range meetingIDs {
		ids = append(ids, id)
	}
	// Batch the IN clause at 50 meetings at a time, mirroring the
	// original's chunking to avoid a huge placeholder list.
	for i := 0; i < len(ids); i += 50 {
		end := min(i+50, len(ids))
		batch := ids[i:end]

		placeholders := make([]string, len(batch))
		args := make([]any, len(batch))
		for j, id := range batch {
			placeholders[j] = fmt.Sprintf("$%d", j+1)
			args[j] = id
		}
		segQ := fmt.Sprintf(`
			SELECT meeting_id, speaker_name, text_content, start_time
			FROM transcript_segments
			WHERE meeting_id IN (%s)
			ORDER BY start_time`, strings.Join(placeholders, ","))

		segRows, err := db.QueryContext(ctx, segQ, args...)
		if err != nil {
			return nil, fmt.Errorf("fetch transcript_segments: %w", err)
		}
		for segRows.Next() {
			var meetingID int
			var speaker *string
			var text string
			var startTime float64
			if err := segRows.Scan(&meetingID, &speaker, &text, &startTime); err != nil {
				segRows.Close()
				return nil, err
			}
			segmentsByMeeting[meetingID] = append(segmentsByMeeting[meetingID], segment{speaker: speaker, text: text, startTime: startTime})
		}
		segRows.Close()
		if err := segRows.Err(); err != nil {
			return nil, err
		}
	}

	results := make([]idText, 0, len(items))
	for _, it := range items {
		var parts []string
		if it.title != nil && *it.title != "" {
			parts = append(parts, *it.title)
		}
		if it.summary != nil && *it.summary != "" {
			parts = append(parts, *it.summary)
		}
		if it.debate != nil && *it.debate != "" {
			parts = append(parts, *it.debate)
		}

		if it.start != nil && it.end != nil {
			var discussion []string
			for _, seg := range segmentsByMeeting[it.meetingID] {
				if seg.startTime < *it.start || seg.startTime > *it.end {
					continue
				}
				speaker := "Unknown"
				if seg.speaker != nil && *seg.speaker != "" {
					speaker = *seg.speaker
				}
				discussion = append(discussion, fmt.Sprintf("%s: %s", speaker, seg.text))
			}
			if len(discussion) > 0 {
				parts = append(parts, "---")
				parts = append(parts, discussion...)
			}
		}

		text := strings.Join(parts, "\n")
		if len(text) > maxEmbedChars {
			text = text[:maxEmbedChars]
		}
		results = append(results, idText{id: it.id, text: text})
	}
	return results, nil
}
