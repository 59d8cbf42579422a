package models

// MatterMatchResult is the Matter Matcher's verdict (§4.9): either a
// matched matter ID with a reason/confidence, or no match at all.
type MatterMatchResult struct {
	MatterID   *int    `json:"matter_id"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Matched reports whether the matcher found a candidate.
func (r MatterMatchResult) Matched() bool { return r.MatterID != nil }
