// Package profiler implements the Stance Profiler: for each councillor
// and each of 8 fixed topics, gathers their key statements and votes,
// asks the structured-extraction LLM sidecar for a grounded position
// summary, and upserts it into person_stances. Grounded on
// original_source/apps/pipeline/pipeline/profiling/stance_generator.py's
// generate_all_stances, reworked onto pkg/llmclient's gRPC sidecar in
// place of a direct Gemini SDK client (the same swap pkg/refiner makes).
package profiler

import "strings"

// Topics is the 8 predefined categories normalizeCategoryToTopic maps
// every agenda-item category onto, matching the person_stances "topic"
// enum.
var Topics = []string{
	"Administration", "Bylaw", "Development", "Environment",
	"Finance", "General", "Public Safety", "Transportation",
}

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"Bylaw", []string{"bylaw", "zoning", "rezoning", "regulatory", "legislat"}},
	{"Development", []string{"develop", "planning", "land use", "permit", "ocp", "housing", "heritage", "subdivis"}},
	{"Environment", []string{"environ", "park", "climate", "sustain", "trail", "tree", "conservation", "recreation"}},
	{"Finance", []string{"financ", "budget", "tax", "grant", "capital", "debt", "fund"}},
	{"Transportation", []string{"transport", "traffic", "road", "transit", "cycl", "pedestr", "infrastruc", "engineer"}},
	{"Public Safety", []string{"safe", "polic", "fire", "protect", "emergency", "rcmp", "enforcement"}},
	{"Administration", []string{"admin", "governance", "appoint", "committee", "procedur", "minutes", "agenda", "adjournm", "closed", "routine", "consent"}},
}

// normalizeCategoryToTopic ports _normalize_category_to_topic: maps an
// agenda item's free-text category onto one of the 8 fixed topics by
// keyword match, checked in the original's fixed priority order, falling
// back to "General" for an empty or unmatched category.
func normalizeCategoryToTopic(category string) string {
	if category == "" {
		return "General"
	}
	cat := strings.ToLower(category)
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(cat, kw) {
				return t.topic
			}
		}
	}
	return "General"
}
