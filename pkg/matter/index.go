package matter

import "sync"

// candidate is the in-memory projection of a Matter row the matcher needs
// to score against. Kept separate from ent.Matter so tests don't need a
// database.
type candidate struct {
	id          int
	identifiers []string // normalized compound parts
	title       string
	addresses   []string
	category    string
}

// Index is the per-run, in-process matter lookup the spec calls
// MatterMatcher._matters: owned exclusively by one run, never shared
// across goroutines (§5 shared-resource policy).
type Index struct {
	mu         sync.Mutex
	candidates []candidate
	byIdentifier map[string][]int // normalized identifier -> candidate slice indexes
	byAddress    map[string][]int
}

// NewIndex creates an empty matter index.
func NewIndex() *Index {
	return &Index{
		byIdentifier: make(map[string][]int),
		byAddress:    make(map[string][]int),
	}
}

// Seed loads existing matters (typically from the store at the start of a
// run) into the index.
func (idx *Index) Seed(id int, identifier, title string, addresses []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.add(id, identifier, title, addresses)
}

// add is the unlocked insert used by both Seed and the write-through
// inserts from AddNew.
func (idx *Index) add(id int, identifier, title string, addresses []string) {
	c := candidate{
		id:          id,
		identifiers: ParseCompoundIdentifier(identifier),
		title:       title,
		addresses:   addresses,
		category:    DeriveCategory(title),
	}
	pos := len(idx.candidates)
	idx.candidates = append(idx.candidates, c)
	for _, norm := range c.identifiers {
		idx.byIdentifier[norm] = append(idx.byIdentifier[norm], pos)
	}
	for _, addr := range c.addresses {
		idx.byAddress[addr] = append(idx.byAddress[addr], pos)
	}
}

// AddNew registers a freshly created matter (write-through) so later
// lookups in the same run see it without a round trip to the store.
func (idx *Index) AddNew(id int, identifier, title string, addresses []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.add(id, identifier, title, addresses)
}
