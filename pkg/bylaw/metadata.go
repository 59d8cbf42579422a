package bylaw

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var bylawNumberRe = regexp.MustCompile(`(?i)no\.?\s*(\d+)`)

// Metadata is what extractMetadata recovers from a bylaw PDF's filename.
// The original also extracted a year, but our bylaws schema has no year
// column to put it in — title and number are all an upsert needs.
type Metadata struct {
	Title  string // filename with the extension stripped
	Number string // canonical form, e.g. "Bylaw 1160"
}

// extractMetadata ports extract_metadata: filenames are expected in the
// shape "Name of Bylaw No. 123, 2023.pdf". Returns ok=false when no bylaw
// number can be found — such a file has nothing to key an upsert on.
func extractMetadata(filename string) (Metadata, bool) {
	clean := strings.TrimSuffix(filename, filepath.Ext(filename))

	m := bylawNumberRe.FindStringSubmatch(clean)
	if m == nil {
		return Metadata{}, false
	}

	return Metadata{
		Title:  clean,
		Number: fmt.Sprintf("Bylaw %s", m[1]),
	}, true
}
