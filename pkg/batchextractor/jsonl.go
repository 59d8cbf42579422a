package batchextractor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// batchRequest is one line of a submitted JSONL batch: either a boundary
// pass (kind "boundary") over a whole uploaded PDF, or a content pass
// (kind "content") over a previously-sliced page-range PDF. Mirrors a
// provider's batch-API request/response-by-key shape (e.g. Gemini's Batch
// API), kept internal to this package since capability.BatchAPI only
// moves opaque bytes.
type batchRequest struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	FileID    string `json:"file_id"`
	PageStart int    `json:"page_start,omitempty"`
	PageEnd   int    `json:"page_end,omitempty"`
}

type batchResponse struct {
	Key      string `json:"key"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func buildJSONL(reqs []batchRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range reqs {
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encode request %q: %w", r.Key, err)
		}
	}
	return buf.Bytes(), nil
}

// parseResults reads one batchResponse per line, returning successful
// responses and per-key errors separately so a single bad request in a
// wave doesn't abort the rest (the error policy's "per-request errors are
// logged, not fatal" rule).
func parseResults(data []byte) (responses map[string]string, errs map[string]string, err error) {
	responses = make(map[string]string)
	errs = make(map[string]string)

	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var r batchResponse
		if decErr := dec.Decode(&r); decErr != nil {
			return nil, nil, fmt.Errorf("decode batch result line: %w", decErr)
		}
		if r.Error != "" {
			errs[r.Key] = r.Error
			continue
		}
		responses[r.Key] = r.Response
	}
	return responses, errs, nil
}
