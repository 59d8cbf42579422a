package modelclients

import (
	"context"
	"net/http"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// EmbeddingClient calls an OpenAI-compatible /v1/embeddings endpoint,
// satisfying capability.EmbeddingProvider. Kept separate from
// pkg/llmclient's gRPC sidecar: that service's GenerateStructured request
// is text-prompt-in/text-completion-out, with no RPC for a batch of texts
// in/fixed-width vectors out, so the embedding provider is its own small
// HTTP client rather than a forced fit onto the structured-extraction
// contract.
type EmbeddingClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewEmbeddingClient builds an EmbeddingClient against endpoint (e.g.
// "https://api.openai.com/v1/embeddings").
func NewEmbeddingClient(endpoint, apiKey, model string, timeout time.Duration) *EmbeddingClient {
	return &EmbeddingClient{endpoint: endpoint, apiKey: apiKey, model: model, client: defaultClient(timeout)}
}

var _ capability.EmbeddingProvider = (*EmbeddingClient)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingDatum struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}

// Embed generates one fixed-width vector per input text, in order.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	req := embeddingRequest{Model: c.model, Input: texts}
	if err := c.postAuthed(ctx, req, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

func (c *EmbeddingClient) postAuthed(ctx context.Context, req, out any) error {
	// postJSON doesn't set bearer auth headers; embeddings providers
	// require one, so go through postJSONAuthed instead.
	return postJSONAuthed(ctx, c.client, c.endpoint, c.apiKey, req, out)
}
