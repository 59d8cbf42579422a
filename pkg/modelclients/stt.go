package modelclients

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/models"
)

// STTClient calls a local transcription sidecar (standing in for
// parakeet-mlx) over HTTP, satisfying capability.SpeechToText.
type STTClient struct {
	endpoint string
	client   *http.Client
}

// NewSTTClient builds an STTClient against endpoint (e.g.
// "http://localhost:8802/transcribe").
func NewSTTClient(endpoint string, timeout time.Duration) *STTClient {
	return &STTClient{endpoint: endpoint, client: defaultClient(timeout)}
}

var _ capability.SpeechToText = (*STTClient)(nil)

type sttRequest struct {
	AudioB64 string `json:"audio_b64"`
}

type sttResponse struct {
	Segments []models.RawSTTSegment `json:"segments"`
}

// Transcribe uploads the WAV file at wavPath and returns its raw,
// unattributed segments.
func (c *STTClient) Transcribe(ctx context.Context, wavPath string) ([]models.RawSTTSegment, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", wavPath, err)
	}

	var resp sttResponse
	req := sttRequest{AudioB64: base64.StdEncoding.EncodeToString(data)}
	if err := postJSON(ctx, c.client, c.endpoint, req, &resp); err != nil {
		return nil, err
	}
	return resp.Segments, nil
}
