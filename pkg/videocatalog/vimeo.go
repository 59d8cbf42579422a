// Package videocatalog implements the VideoCatalog capability (§6):
// resolving meeting dates to their recorded video. Grounded on
// original_source/apps/pipeline/pipeline/video/vimeo.py's VimeoClient
// (get_video_map: paginated GET against /users/{user}/videos, 0.5s
// between pages, date extracted from the video title). Reworked into
// Go idiom: net/http + encoding/json instead of requests, a context
// deadline instead of bare exception handling, golang.org/x/time/rate
// for the inter-page pacing (same library SPEC_FULL.md wires for the
// geocoder's 1req/s limit) instead of a bare time.Sleep.
package videocatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/config"
)

const vimeoAPIBase = "https://api.vimeo.com"

var dateInTitleRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// VimeoCatalog resolves meeting recordings from a Vimeo user's video
// library (the user's "showcase" of uploaded council meetings).
type VimeoCatalog struct {
	httpClient *http.Client
	token      string
	user       string
	apiBase    string
	limiter    *rate.Limiter
}

// New creates a VimeoCatalog for cfg.ChannelID (the Vimeo username or
// showcase ID) authenticated with the token read from cfg.APIKeyEnv.
func New(cfg config.VideoCatalogConfig, token string) *VimeoCatalog {
	return &VimeoCatalog{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		user:       cfg.ChannelID,
		apiBase:    vimeoAPIBase,
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

type vimeoVideosResponse struct {
	Data []struct {
		URI         string `json:"uri"`
		Name        string `json:"name"`
		Link        string `json:"link"`
		CreatedTime string `json:"created_time"`
		Duration    int    `json:"duration"`
	} `json:"data"`
	Paging struct {
		Next *string `json:"next"`
	} `json:"paging"`
}

// GetVideoMap fetches every video in the user's library and keys it by
// the meeting date embedded in its title, paginating 100 at a time.
func (v *VimeoCatalog) GetVideoMap(ctx context.Context) (map[string][]capability.VideoRecording, error) {
	if v.token == "" {
		return nil, fmt.Errorf("videocatalog: no Vimeo API token configured")
	}

	videoMap := make(map[string][]capability.VideoRecording)
	page := 1
	for {
		if err := v.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := v.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("videocatalog: fetch page %d: %w", page, err)
		}
		if len(resp.Data) == 0 {
			break
		}

		for _, item := range resp.Data {
			dateKey := dateInTitleRe.FindString(item.Name)
			if dateKey == "" {
				continue
			}
			videoMap[dateKey] = append(videoMap[dateKey], capability.VideoRecording{
				Title: item.Name,
				URL:   item.Link,
				ID:    item.URI,
			})
		}

		if resp.Paging.Next == nil {
			break
		}
		page++
	}

	return videoMap, nil
}

func (v *VimeoCatalog) fetchPage(ctx context.Context, page int) (*vimeoVideosResponse, error) {
	endpoint := fmt.Sprintf("%s/users/%s/videos", v.apiBase, url.PathEscape(v.user))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("per_page", "100")
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("fields", "uri,name,link,created_time,duration")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+v.token)
	req.Header.Set("Accept", "application/vnd.vimeo.*+json;version=3.4")

	httpResp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vimeo API status %d", httpResp.StatusCode)
	}

	var out vimeoVideosResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

var _ capability.VideoCatalog = (*VimeoCatalog)(nil)
