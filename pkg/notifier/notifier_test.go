package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_DisabledReturnsNil(t *testing.T) {
	assert.Nil(t, NewService(Config{Enabled: false, WebhookURL: "http://example.com"}))
	assert.Nil(t, NewService(Config{Enabled: true, WebhookURL: ""}))
}

func TestNotifyMeetingProcessed_NilServiceIsNoop(t *testing.T) {
	var s *Service
	assert.NotPanics(t, func() {
		s.NotifyMeetingProcessed(context.Background(), MeetingProcessedEvent{})
	})
}

func TestNotifyMeetingProcessed_DeliversPayload(t *testing.T) {
	received := make(chan MeetingProcessedEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event MeetingProcessedEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(Config{Enabled: true, WebhookURL: server.URL, Timeout: 5 * time.Second})
	require.NotNil(t, s)

	s.NotifyMeetingProcessed(context.Background(), MeetingProcessedEvent{
		MunicipalitySlug: "viewroyal",
		MeetingID:        42,
		Status:           "completed",
		PhasesCompleted:  []string{"scrape", "ingest"},
	})

	select {
	case event := <-received:
		assert.Equal(t, "viewroyal", event.MunicipalitySlug)
		assert.Equal(t, 42, event.MeetingID)
		assert.Equal(t, "completed", event.Status)
	case <-time.After(time.Second):
		t.Fatal("webhook was not called")
	}
}
