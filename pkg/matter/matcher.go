// Package matter implements the Matter Matcher (§4.9): given a candidate
// identifier/title/address set for an agenda item, resolve it to an
// existing cross-meeting Matter or report that none exists. Grounded on
// tarsy's registry+merge idiom (pkg/config's builtin/user override maps)
// generalized from config-time merging to run-time entity resolution: an
// in-memory index (matter.Index) stands in for tarsy's map[string]*T
// registries, with write-through insertion instead of load-time merge.
package matter

import (
	"strings"

	"github.com/viewroyal/civicpipe/pkg/models"
	"github.com/viewroyal/civicpipe/pkg/textsim"
)

const (
	titleSimilarityIdentifierMin = 0.70
	titleSimilarityAddressMin    = 0.60
)

// Matcher resolves matter references against an Index. Deterministic for
// a fixed index (P6).
type Matcher struct {
	index *Index
}

// NewMatcher creates a matcher over the given index.
func NewMatcher(index *Index) *Matcher {
	return &Matcher{index: index}
}

// FindMatch implements the two-stage matching algorithm of §4.9.
func (m *Matcher) FindMatch(identifier, title string, relatedAddresses []string) models.MatterMatchResult {
	m.index.mu.Lock()
	defer m.index.mu.Unlock()

	normIdentifiers := ParseCompoundIdentifier(identifier)
	normAddresses := normalizeAddressList(relatedAddresses)

	if res, ok := m.matchByIdentifier(normIdentifiers, title, normAddresses); ok {
		return res
	}
	if res, ok := m.matchByAddressAndCategory(title, normAddresses); ok {
		return res
	}
	return models.MatterMatchResult{MatterID: nil, Reason: "no_match", Confidence: 0}
}

func (m *Matcher) matchByIdentifier(normIdentifiers []string, title string, normAddresses []string) (models.MatterMatchResult, bool) {
	if len(normIdentifiers) == 0 {
		return models.MatterMatchResult{}, false
	}

	seen := make(map[int]struct{})
	var positions []int
	for _, id := range normIdentifiers {
		for _, pos := range m.index.byIdentifier[id] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}
	if len(positions) == 0 {
		return models.MatterMatchResult{}, false
	}
	if len(positions) == 1 {
		return matched(m.index.candidates[positions[0]].id, "identifier_exact", 1.0), true
	}

	// (a) prefer the candidate sharing >= 2 sub-identifier parts.
	for _, pos := range positions {
		shared := 0
		cand := m.index.candidates[pos]
		for _, ci := range cand.identifiers {
			for _, qi := range normIdentifiers {
				if ci == qi {
					shared++
				}
			}
		}
		if shared >= 2 {
			return matched(cand.id, "identifier_multi_overlap", 0.98), true
		}
	}

	// (b) intersect by normalized address.
	if len(normAddresses) > 0 {
		for _, pos := range positions {
			cand := m.index.candidates[pos]
			if addressOverlap(cand.addresses, normAddresses) {
				return matched(cand.id, "identifier_address_overlap", 0.95), true
			}
		}
	}

	// (c) highest title similarity, requiring >= 0.70.
	bestPos, bestScore := -1, 0.0
	for _, pos := range positions {
		score := textsim.Ratio(title, m.index.candidates[pos].title)
		if score > bestScore {
			bestScore = score
			bestPos = pos
		}
	}
	if bestPos >= 0 && bestScore >= titleSimilarityIdentifierMin {
		return matched(m.index.candidates[bestPos].id, "identifier_title_similarity", 0.90), true
	}

	return models.MatterMatchResult{}, false
}

func (m *Matcher) matchByAddressAndCategory(title string, normAddresses []string) (models.MatterMatchResult, bool) {
	if len(normAddresses) == 0 {
		return models.MatterMatchResult{}, false
	}
	category := DeriveCategory(title)
	if category == "" {
		return models.MatterMatchResult{}, false
	}

	seen := make(map[int]struct{})
	var positions []int
	for _, addr := range normAddresses {
		for _, pos := range m.index.byAddress[addr] {
			cand := m.index.candidates[pos]
			if cand.category != category {
				continue
			}
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}
	if len(positions) == 0 {
		return models.MatterMatchResult{}, false
	}
	if len(positions) == 1 {
		cand := m.index.candidates[positions[0]]
		if hasDisjointIntegers(title, cand.title) {
			return models.MatterMatchResult{}, false
		}
		return matched(cand.id, "address_category", 0.85), true
	}

	bestPos, bestScore := -1, 0.0
	for _, pos := range positions {
		score := textsim.Ratio(title, m.index.candidates[pos].title)
		if score > bestScore {
			bestScore = score
			bestPos = pos
		}
	}
	if bestPos >= 0 && bestScore >= titleSimilarityAddressMin {
		return matched(m.index.candidates[bestPos].id, "address_category_title_similarity", 0.85), true
	}
	return models.MatterMatchResult{}, false
}

func matched(id int, reason string, confidence float64) models.MatterMatchResult {
	return models.MatterMatchResult{MatterID: &id, Reason: reason, Confidence: confidence}
}

func addressOverlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, y := range b {
		if _, ok := set[y]; ok {
			return true
		}
	}
	return false
}

func normalizeAddressList(addresses []string) []string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if !IsAddressLike(a) {
			continue
		}
		for _, extracted := range ExtractAddresses(a) {
			out = append(out, extracted)
		}
		if len(ExtractAddresses(a)) == 0 {
			out = append(out, strings.ToLower(strings.TrimSpace(a)))
		}
	}
	return out
}

// RegisterNew adds a newly created matter to the index (write-through),
// preventing duplicate creation later in the same run.
func (m *Matcher) RegisterNew(id int, identifier, title string, addresses []string) {
	m.index.AddNew(id, identifier, title, addresses)
}
