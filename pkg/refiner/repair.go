package refiner

import (
	"strconv"
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
)

// repair applies the same "near-miss" fixups ai_refiner.py's
// _repair_local_json does for lenient providers that don't follow the
// schema exactly: key renames, timestamp coercion, vote normalization,
// and dropping attendees/voters who claim a council title the roster
// doesn't recognize.
func (r *Refiner) repair(data map[string]any) map[string]any {
	renameTopLevelAliases(data)
	renameTranscriptCorrections(data)
	r.filterHallucinatedAttendees(data)
	applyTopLevelDefaults(data)

	items, _ := data["items"].([]any)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		r.repairItem(item)
	}

	return data
}

func renameTopLevelAliases(data map[string]any) {
	if aliases, ok := data["aliases"]; ok {
		if _, has := data["speaker_aliases"]; !has {
			if m, ok := aliases.(map[string]any); ok {
				var list []any
				for k, v := range m {
					list = append(list, map[string]any{"label": k, "name": v})
				}
				data["speaker_aliases"] = list
			} else {
				data["speaker_aliases"] = aliases
			}
		}
		delete(data, "aliases")
	}

	if list, ok := data["speaker_aliases"].([]any); ok {
		for _, raw := range list {
			sa, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			renameKey(sa, "alias", "label")
			renameKey(sa, "speaker_id", "label")
			renameKey(sa, "speaker_label", "label")
			renameKey(sa, "real_name", "name")
		}
	}
}

func renameTranscriptCorrections(data map[string]any) {
	list, ok := data["transcript_corrections"].([]any)
	if !ok {
		return
	}
	for _, raw := range list {
		tc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		renameKey(tc, "original", "original_text")
		renameKey(tc, "corrected", "corrected_text")
	}
}

// filterHallucinatedAttendees drops any attendee claiming a council title
// (Mayor/Councillor/Cclr) that doesn't resolve to a name on the roster,
// and canonicalizes the rest.
func (r *Refiner) filterHallucinatedAttendees(data map[string]any) {
	attendees, ok := data["attendees"].([]any)
	if !ok {
		return
	}

	filtered := make([]any, 0, len(attendees))
	for _, raw := range attendees {
		name, ok := raw.(string)
		if !ok {
			filtered = append(filtered, raw)
			continue
		}

		isOfficial := strings.Contains(name, "Councillor") || strings.Contains(name, "Mayor") || strings.Contains(name, "Cclr")
		clean := r.canon.Canonicalize(name)

		if isOfficial && r.canon != nil && !r.canon.InCanonicalSet(clean) {
			continue
		}
		filtered = append(filtered, clean)
	}
	data["attendees"] = filtered
}

func applyTopLevelDefaults(data map[string]any) {
	defaults := map[string]any{
		"scratchpad_speaker_map": "",
		"scratchpad_timeline":    "",
		"summary":                "Meeting summary not provided by model.",
		"chair_person_name":      nil,
		"attendees":              []any{},
		"speaker_aliases":        []any{},
		"transcript_corrections": []any{},
		"items":                  []any{},
	}
	for k, v := range defaults {
		if cur, ok := data[k]; !ok || cur == nil {
			data[k] = v
		}
	}
}

func (r *Refiner) repairItem(item map[string]any) {
	if val, ok := item["agenda_item"]; ok {
		title, hasTitle := item["title"].(string)
		if s, ok := val.(string); ok && (!hasTitle || title == "") {
			if idx := strings.Index(s, ". "); idx >= 0 {
				item["item_order"] = s[:idx]
				item["title"] = s[idx+2:]
			} else {
				item["title"] = s
			}
		}
		delete(item, "agenda_item")
	}

	renameKey(item, "addresses", "related_address")

	if _, ok := item["item_order"]; !ok {
		item["item_order"] = "0"
	}
	if _, ok := item["title"]; !ok {
		item["title"] = "Untitled Item"
	}
	if _, ok := item["tags"]; !ok {
		item["tags"] = []any{}
	}

	item["discussion_start_time"] = toSeconds(item["discussion_start_time"])
	item["discussion_end_time"] = toSeconds(item["discussion_end_time"])

	repairKeyQuotes(item)
	repairKeyStatements(item)

	for k, v := range map[string]any{
		"is_controversial": false,
		"financial_cost":   nil,
		"funding_source":   nil,
		"debate_summary":   nil,
		"description":      nil,
	} {
		if _, ok := item[k]; !ok {
			item[k] = v
		}
	}

	if motions, ok := item["motions"].([]any); ok {
		for _, raw := range motions {
			mot, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			r.repairMotion(mot)
		}
	}
}

func repairKeyQuotes(item map[string]any) {
	raw, ok := item["key_quotes"].([]any)
	if !ok {
		item["key_quotes"] = []any{}
		return
	}

	repaired := make([]any, 0, len(raw))
	for _, q := range raw {
		switch v := q.(type) {
		case string:
			if idx := strings.Index(v, ": "); idx >= 0 {
				repaired = append(repaired, map[string]any{
					"speaker": strings.TrimSpace(v[:idx]), "text": strings.TrimSpace(v[idx+2:]), "timestamp": nil,
				})
			} else {
				repaired = append(repaired, map[string]any{"speaker": "Unknown", "text": v, "timestamp": nil})
			}
		case map[string]any:
			renameKey(v, "quote", "text")
			if _, ok := v["timestamp"]; !ok {
				v["timestamp"] = nil
			} else {
				v["timestamp"] = toSeconds(v["timestamp"])
			}
			repaired = append(repaired, v)
		}
	}
	item["key_quotes"] = repaired
}

func repairKeyStatements(item map[string]any) {
	raw, ok := item["key_statements"].([]any)
	if !ok {
		item["key_statements"] = []any{}
		return
	}

	validTypes := make(map[string]struct{}, len(models.StatementTypes))
	for _, t := range models.StatementTypes {
		validTypes[t] = struct{}{}
	}

	for _, raw := range raw {
		ks, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := ks["timestamp"]; !ok {
			ks["timestamp"] = nil
		} else {
			ks["timestamp"] = toSeconds(ks["timestamp"])
		}
		if _, ok := ks["context"]; !ok {
			ks["context"] = nil
		}
		st, _ := ks["statement_type"].(string)
		st = strings.ToLower(strings.TrimSpace(st))
		if _, ok := validTypes[st]; !ok {
			ks["statement_type"] = "claim"
		} else {
			ks["statement_type"] = st
		}
	}
	item["key_statements"] = raw
}

func (r *Refiner) repairMotion(mot map[string]any) {
	if votes, ok := mot["votes"]; ok {
		switch v := votes.(type) {
		case map[string]any:
			list := make([]any, 0, len(v))
			for k, vote := range v {
				list = append(list, map[string]any{"person_name": k, "vote": vote, "reason": nil})
			}
			mot["votes"] = r.repairVotes(list)
		case []any:
			mot["votes"] = r.repairVotes(v)
		}
	}

	if attr, ok := mot["vote_attribution"]; ok {
		if _, hasResult := mot["result"]; !hasResult {
			s, _ := attr.(string)
			if strings.Contains(strings.ToUpper(s), "CARRIED") {
				mot["result"] = "CARRIED"
			} else {
				mot["result"] = "DEFEATED"
			}
		}
		delete(mot, "vote_attribution")
	}

	if v, ok := mot["result"]; !ok || v == nil {
		mot["result"] = "CARRIED"
	}
	if _, ok := mot["votes"]; !ok {
		mot["votes"] = []any{}
	}
}

// repairVotes renames loose voter-name keys, normalizes vote strings, and
// drops any voter that doesn't resolve to a name on the municipality's
// known roster (the same hallucination guard applied to attendees).
func (r *Refiner) repairVotes(raw []any) []any {
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		v, ok := item.(map[string]any)
		if !ok {
			continue
		}
		renameKey(v, "councillor", "person_name")
		renameKey(v, "member", "person_name")
		renameKey(v, "voter", "person_name")
		if _, ok := v["reason"]; !ok {
			v["reason"] = nil
		}

		voteStr := strings.ToUpper(strings.TrimSpace(stringValue(v["vote"])))
		switch voteStr {
		case "AYE", "IN FAVOR", "IN FAVOUR", "YES":
			v["vote"] = "Yes"
		case "NAY", "OPPOSED", "NO":
			v["vote"] = "No"
		}

		name := stringValue(v["person_name"])
		canonical := r.canon.Canonicalize(name)
		if r.canon != nil && !r.canon.InCanonicalSet(canonical) {
			continue
		}
		v["person_name"] = canonical
		out = append(out, v)
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func renameKey(m map[string]any, from, to string) {
	if v, ok := m[from]; ok {
		if _, has := m[to]; !has {
			m[to] = v
		}
		delete(m, from)
	}
}

// toSeconds coerces a numeric, "HH:MM:SS", or "MM:SS" value to a float64
// pointer in seconds, returning nil when the value can't be parsed.
func toSeconds(val any) *float64 {
	switch v := val.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		if !strings.Contains(v, ":") {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
			return nil
		}
		parts := strings.Split(v, ":")
		nums := make([]float64, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil
			}
			nums[i] = f
		}
		switch len(nums) {
		case 3:
			total := nums[0]*3600 + nums[1]*60 + nums[2]
			return &total
		case 2:
			total := nums[0]*60 + nums[1]
			return &total
		}
		return nil
	default:
		return nil
	}
}
