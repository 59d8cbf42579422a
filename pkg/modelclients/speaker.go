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

// SpeakerClient calls a local segmentation+embedding sidecar (standing in
// for senko) over HTTP, satisfying capability.SpeakerPipeline.
type SpeakerClient struct {
	endpoint string
	client   *http.Client
}

// NewSpeakerClient builds a SpeakerClient against endpoint (e.g.
// "http://localhost:8801/diarize").
func NewSpeakerClient(endpoint string, timeout time.Duration) *SpeakerClient {
	return &SpeakerClient{endpoint: endpoint, client: defaultClient(timeout)}
}

var _ capability.SpeakerPipeline = (*SpeakerClient)(nil)

type speakerRequest struct {
	AudioB64 string `json:"audio_b64"`
}

type speakerResponse struct {
	Segments         []models.DiarizationSegment `json:"segments"`
	SpeakerCentroids map[string][]float32        `json:"speaker_centroids"`
}

// Diarize uploads the WAV file at wavPath and returns its segments and
// speaker centroids.
func (c *SpeakerClient) Diarize(ctx context.Context, wavPath string) (models.DiarizationResult, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return models.DiarizationResult{}, fmt.Errorf("read %s: %w", wavPath, err)
	}

	var resp speakerResponse
	req := speakerRequest{AudioB64: base64.StdEncoding.EncodeToString(data)}
	if err := postJSON(ctx, c.client, c.endpoint, req, &resp); err != nil {
		return models.DiarizationResult{}, err
	}
	return models.DiarizationResult{Segments: resp.Segments, SpeakerCentroids: resp.SpeakerCentroids}, nil
}
