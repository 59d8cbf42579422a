// Package llmclient wraps the gRPC connection to the structured-extraction
// sidecar used by the refiner and the stance profiler.
package llmclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	pb "github.com/viewroyal/civicpipe/proto/civicllmv1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the LLM sidecar.
type Client struct {
	conn   *grpc.ClientConn
	client pb.LLMServiceClient
	model  string
	logger *slog.Logger
}

// NewClient dials the LLM sidecar at addr and configures the default model
// used for requests that don't specify one.
func NewClient(addr, model string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LLM service: %w", err)
	}

	return &Client{
		conn:   conn,
		client: pb.NewLLMServiceClient(conn),
		model:  model,
		logger: slog.Default().With("component", "llmclient"),
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// StructuredRequest is one structured-extraction call.
type StructuredRequest struct {
	RequestID       string
	Model           string
	SystemPrompt    string
	UserPrompt      string
	JSONSchema      string
	Temperature     float32
	MaxOutputTokens int32
}

// StructuredResponse is the sidecar's reply to one structured extraction
// request.
type StructuredResponse struct {
	Content          string
	PromptTokens     int32
	CompletionTokens int32
	Truncated        bool
}

// GenerateStructured issues one synchronous structured-extraction request,
// used by the refiner for meeting-level extraction and by the stance
// profiler for per-topic stance summaries.
func (c *Client) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.GenerateStructured(ctx, &pb.GenerateStructuredRequest{
		RequestId:       req.RequestID,
		Model:           model,
		SystemPrompt:    req.SystemPrompt,
		UserPrompt:      req.UserPrompt,
		JsonSchema:      req.JSONSchema,
		ResponseFormat:  pb.ResponseFormat_RESPONSE_FORMAT_JSON,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("GenerateStructured: %w", err)
	}

	return &StructuredResponse{
		Content:          resp.GetContent(),
		PromptTokens:     resp.GetPromptTokens(),
		CompletionTokens: resp.GetCompletionTokens(),
		Truncated:        resp.GetTruncated(),
	}, nil
}

// BatchSubmit enqueues a wave of requests as one provider-side batch job.
func (c *Client) BatchSubmit(ctx context.Context, batchID string, reqs []StructuredRequest) (string, error) {
	pbReqs := make([]*pb.GenerateStructuredRequest, len(reqs))
	for i, r := range reqs {
		model := r.Model
		if model == "" {
			model = c.model
		}
		pbReqs[i] = &pb.GenerateStructuredRequest{
			RequestId:       r.RequestID,
			Model:           model,
			SystemPrompt:    r.SystemPrompt,
			UserPrompt:      r.UserPrompt,
			JsonSchema:      r.JSONSchema,
			ResponseFormat:  pb.ResponseFormat_RESPONSE_FORMAT_JSON,
			Temperature:     r.Temperature,
			MaxOutputTokens: r.MaxOutputTokens,
		}
	}

	resp, err := c.client.BatchSubmit(ctx, &pb.BatchSubmitRequest{BatchId: batchID, Requests: pbReqs})
	if err != nil {
		return "", fmt.Errorf("BatchSubmit: %w", err)
	}
	c.logger.Info("submitted batch", "batch_id", batchID, "provider_job_id", resp.GetProviderJobId(), "requests", len(reqs))
	return resp.GetProviderJobId(), nil
}

// BatchStatus reports progress of a submitted batch job.
type BatchStatus struct {
	Status         pb.BatchStatus
	CompletedCount int32
	TotalCount     int32
	Error          string
}

// Done reports whether the batch has reached a terminal state.
func (s BatchStatus) Done() bool {
	switch s.Status {
	case pb.BatchStatus_BATCH_STATUS_COMPLETED, pb.BatchStatus_BATCH_STATUS_FAILED, pb.BatchStatus_BATCH_STATUS_EXPIRED:
		return true
	default:
		return false
	}
}

// BatchGet polls a batch job's status.
func (c *Client) BatchGet(ctx context.Context, providerJobID string) (*BatchStatus, error) {
	resp, err := c.client.BatchGet(ctx, &pb.BatchGetRequest{ProviderJobId: providerJobID})
	if err != nil {
		return nil, fmt.Errorf("BatchGet: %w", err)
	}
	return &BatchStatus{
		Status:         resp.GetStatus(),
		CompletedCount: resp.GetCompletedCount(),
		TotalCount:     resp.GetTotalCount(),
		Error:          resp.GetError(),
	}, nil
}

// BatchResultItem is one request/response pair from a completed batch.
type BatchResultItem struct {
	RequestID string
	Response  *StructuredResponse
	Error     string
}

// BatchResults streams every item of a completed batch job.
func (c *Client) BatchResults(ctx context.Context, providerJobID string) ([]BatchResultItem, error) {
	stream, err := c.client.BatchResults(ctx, &pb.BatchResultsRequest{ProviderJobId: providerJobID})
	if err != nil {
		return nil, fmt.Errorf("BatchResults: %w", err)
	}

	var items []BatchResultItem
	for {
		item, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("BatchResults stream: %w", err)
		}

		result := BatchResultItem{RequestID: item.GetRequestId(), Error: item.GetError()}
		if r := item.GetResponse(); r != nil {
			result.Response = &StructuredResponse{
				Content:          r.GetContent(),
				PromptTokens:     r.GetPromptTokens(),
				CompletionTokens: r.GetCompletionTokens(),
				Truncated:        r.GetTruncated(),
			}
		}
		items = append(items, result)
	}

	return items, nil
}
