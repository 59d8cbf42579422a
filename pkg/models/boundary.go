package models

// DocumentType is the closed set of sub-document kinds the boundary-
// detection pass (§4.5) may classify a page range as.
type DocumentType string

const (
	DocTypeAgenda       DocumentType = "agenda"
	DocTypeMinutes      DocumentType = "minutes"
	DocTypeStaffReport  DocumentType = "staff_report"
	DocTypeDelegation   DocumentType = "delegation"
	DocTypeCorrespondence DocumentType = "correspondence"
	DocTypeAppendix     DocumentType = "appendix"
	DocTypeBylaw        DocumentType = "bylaw"
	DocTypePresentation DocumentType = "presentation"
	DocTypeForm         DocumentType = "form"
	DocTypeOther        DocumentType = "other"
)

// Boundary is one sub-document entry from pass 1 (boundary detection).
type Boundary struct {
	Title       string       `json:"title"`
	PageStart   int          `json:"page_start"`
	PageEnd     int          `json:"page_end"`
	Type        DocumentType `json:"type"`
	AgendaItem  string       `json:"agenda_item,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	KeyFacts    []string     `json:"key_facts,omitempty"`
}

// Section is one content section produced by pass 2 (content extraction),
// split from the sub-document's markdown at "##" headings.
type Section struct {
	SectionTitle string `json:"section_title"`
	SectionText  string `json:"section_text"`
	SectionOrder int    `json:"section_order"`
	PageStart    int    `json:"page_start"`
	PageEnd      int    `json:"page_end"`
	TokenCount   int    `json:"token_count"`
	AgendaItemID *int   `json:"agenda_item_id,omitempty"`
}

// ExtractedDocument bundles one boundary with its extracted sections.
type ExtractedDocument struct {
	Boundary Boundary  `json:"boundary"`
	Sections []Section `json:"sections"`
}
