package videocatalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewroyal/civicpipe/pkg/config"
)

func TestGetVideoMap_PaginatesAndGroupsByDate(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page := r.URL.Query().Get("page")

		var resp vimeoVideosResponse
		if page == "1" {
			resp.Data = append(resp.Data, struct {
				URI         string `json:"uri"`
				Name        string `json:"name"`
				Link        string `json:"link"`
				CreatedTime string `json:"created_time"`
				Duration    int    `json:"duration"`
			}{URI: "/videos/1", Name: "2025-03-11 Council Meeting", Link: "https://vimeo.com/1"})
			next := "/users/x/videos?page=2"
			resp.Paging.Next = &next
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cat := New(config.VideoCatalogConfig{ChannelID: "testuser"}, "test-token")
	cat.apiBase = srv.URL
	videoMap, err := cat.GetVideoMap(context.Background())
	require.NoError(t, err)

	assert.Contains(t, videoMap, "2025-03-11")
	assert.Equal(t, "https://vimeo.com/1", videoMap["2025-03-11"][0].URL)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestGetVideoMap_NoToken(t *testing.T) {
	cat := New(config.VideoCatalogConfig{ChannelID: "x"}, "")
	_, err := cat.GetVideoMap(context.Background())
	assert.Error(t, err)
}
