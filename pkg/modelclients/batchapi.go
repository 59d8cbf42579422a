package modelclients

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// BatchAPIClient calls a remote async batch-processing provider (e.g. a
// Gemini-style Batch API: upload files, submit a job referencing them,
// poll to completion, download JSONL results), satisfying
// capability.BatchAPI.
type BatchAPIClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewBatchAPIClient builds a BatchAPIClient against endpoint.
func NewBatchAPIClient(endpoint, apiKey string, timeout time.Duration) *BatchAPIClient {
	return &BatchAPIClient{endpoint: endpoint, apiKey: apiKey, client: defaultClient(timeout)}
}

var _ capability.BatchAPI = (*BatchAPIClient)(nil)

type uploadRequest struct {
	Op          string `json:"op"`
	DisplayName string `json:"display_name"`
	DataB64     string `json:"data_b64"`
}

type uploadResponse struct {
	FileID string `json:"file_id"`
}

// UploadFile uploads data under displayName and returns the provider's
// file handle.
func (c *BatchAPIClient) UploadFile(ctx context.Context, displayName string, data []byte) (string, error) {
	var resp uploadResponse
	req := uploadRequest{Op: "upload", DisplayName: displayName, DataB64: base64.StdEncoding.EncodeToString(data)}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return "", err
	}
	return resp.FileID, nil
}

type fileOpRequest struct {
	Op     string `json:"op"`
	FileID string `json:"file_id,omitempty"`
}

// DeleteFile removes a previously uploaded file.
func (c *BatchAPIClient) DeleteFile(ctx context.Context, fileID string) error {
	req := fileOpRequest{Op: "delete_file", FileID: fileID}
	return postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, nil)
}

type submitRequest struct {
	Op             string `json:"op"`
	RequestsFileID string `json:"requests_file_id"`
	DisplayName    string `json:"display_name"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

// SubmitJob submits requestsFileID (a JSONL request batch) as a new job.
func (c *BatchAPIClient) SubmitJob(ctx context.Context, requestsFileID, displayName string) (string, error) {
	var resp submitResponse
	req := submitRequest{Op: "submit_job", RequestsFileID: requestsFileID, DisplayName: displayName}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

type pollRequest struct {
	Op    string `json:"op"`
	JobID string `json:"job_id"`
}

type pollResponse struct {
	Status string `json:"status"`
}

// PollJob returns a job's current lifecycle state.
func (c *BatchAPIClient) PollJob(ctx context.Context, jobID string) (capability.BatchJobStatus, error) {
	var resp pollResponse
	req := pollRequest{Op: "poll_job", JobID: jobID}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return "", err
	}
	return capability.BatchJobStatus(resp.Status), nil
}

type downloadResponse struct {
	ResultsB64 string `json:"results_b64"`
}

// DownloadResults fetches the JSONL result bytes of a completed job.
func (c *BatchAPIClient) DownloadResults(ctx context.Context, jobID string) ([]byte, error) {
	var resp downloadResponse
	req := pollRequest{Op: "download_results", JobID: jobID}
	if err := postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, &resp); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(resp.ResultsB64)
}
