package modelclients

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// DocumentAIClient calls a multimodal document-understanding provider
// (e.g. a Gemini-style generateContent endpoint taking an inline PDF
// part) over HTTP, satisfying both capability.DocumentAI and
// capability.PDFSlicer — no PDF-mutation library exists anywhere in the
// example pack, so page-range slicing is delegated to the same provider
// rather than grown as a local dependency.
type DocumentAIClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewDocumentAIClient builds a DocumentAIClient against endpoint.
func NewDocumentAIClient(endpoint, apiKey string, timeout time.Duration) *DocumentAIClient {
	return &DocumentAIClient{endpoint: endpoint, apiKey: apiKey, client: defaultClient(timeout)}
}

var (
	_ capability.DocumentAI = (*DocumentAIClient)(nil)
	_ capability.PDFSlicer  = (*DocumentAIClient)(nil)
)

type documentAIRequest struct {
	Op        string `json:"op"`
	PDFB64    string `json:"pdf_b64"`
	PageStart int    `json:"page_start,omitempty"`
	PageEnd   int    `json:"page_end,omitempty"`
	HeadPages int    `json:"head_pages,omitempty"`
}

type boundariesResponse struct {
	Boundaries []capability.BoundaryDocument `json:"boundaries"`
}

type markdownResponse struct {
	Markdown string `json:"markdown"`
}

type sliceResponse struct {
	PDFB64 string `json:"pdf_b64"`
}

// DetectBoundaries asks the provider to segment pdf into sub-documents.
func (c *DocumentAIClient) DetectBoundaries(ctx context.Context, pdf []byte) ([]capability.BoundaryDocument, error) {
	var resp boundariesResponse
	req := documentAIRequest{Op: "detect_boundaries", PDFB64: base64.StdEncoding.EncodeToString(pdf)}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return nil, err
	}
	return resp.Boundaries, nil
}

// ExtractMarkdown asks the provider to transcribe pages [pageStart,
// pageEnd] of pdf into clean markdown.
func (c *DocumentAIClient) ExtractMarkdown(ctx context.Context, pdf []byte, pageStart, pageEnd int) (string, error) {
	var resp markdownResponse
	req := documentAIRequest{Op: "extract_markdown", PDFB64: base64.StdEncoding.EncodeToString(pdf), PageStart: pageStart, PageEnd: pageEnd}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return "", err
	}
	return resp.Markdown, nil
}

// SlicePages extracts pages [startPage, endPage] of pdf into a standalone
// PDF renumbered from page 1.
func (c *DocumentAIClient) SlicePages(ctx context.Context, pdf []byte, startPage, endPage int) ([]byte, error) {
	return c.slice(ctx, pdf, 0, startPage, endPage)
}

// SlicePagesWithHead is SlicePages but re-includes the PDF's first
// headPages pages ahead of the requested range.
func (c *DocumentAIClient) SlicePagesWithHead(ctx context.Context, pdf []byte, headPages, startPage, endPage int) ([]byte, error) {
	return c.slice(ctx, pdf, headPages, startPage, endPage)
}

func (c *DocumentAIClient) slice(ctx context.Context, pdf []byte, headPages, startPage, endPage int) ([]byte, error) {
	var resp sliceResponse
	req := documentAIRequest{
		Op:        "slice_pages",
		PDFB64:    base64.StdEncoding.EncodeToString(pdf),
		PageStart: startPage,
		PageEnd:   endPage,
		HeadPages: headPages,
	}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(resp.PDFB64)
}
