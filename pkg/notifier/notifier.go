// Package notifier sends a best-effort webhook push when a meeting finishes
// processing. Grounded on tarsy's pkg/slack service idiom (nil-safe
// Service, fail-open NotifyX methods, ServiceConfig), with the slack-go
// Block Kit client swapped for a plain JSON HTTP POST since this pipeline
// has no specific chat-platform integration to target.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds the parameters needed to construct a Service.
type Config struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// MeetingProcessedEvent describes the outcome of one meeting's processing
// run, delivered as the webhook payload.
type MeetingProcessedEvent struct {
	MunicipalitySlug string    `json:"municipality_slug"`
	MeetingID        int       `json:"meeting_id"`
	Status           string    `json:"status"` // meeting status from ingest: Planned, Occurred, Completed
	PhasesCompleted  []string  `json:"phases_completed"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// Service delivers best-effort webhook notifications. Nil-safe: every
// method is a no-op when the service is nil, so callers can wire a
// disabled notifier without branching at every call site.
type Service struct {
	webhookURL string
	timeout    time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// NewService creates a webhook notification service. Returns nil if the
// notifier is disabled or no webhook URL is configured.
func NewService(cfg Config) *Service {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return nil
	}
	return &Service{
		webhookURL: cfg.WebhookURL,
		timeout:    cfg.Timeout,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default().With("component", "notifier"),
	}
}

// NotifyMeetingProcessed pushes a MeetingProcessedEvent to the configured
// webhook. Fail-open: delivery errors are logged, never returned — a
// notification failure must never fail the orchestrator run it reports on.
func (s *Service) NotifyMeetingProcessed(ctx context.Context, event MeetingProcessedEvent) {
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal notification payload", "meeting_id", event.MeetingID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to build notification request", "meeting_id", event.MeetingID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("failed to deliver notification", "meeting_id", event.MeetingID, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		s.logger.Error("notification webhook returned non-2xx",
			"meeting_id", event.MeetingID, "status", resp.StatusCode, "error", statusError(resp.StatusCode))
	}
}

func statusError(code int) error {
	return fmt.Errorf("unexpected status code %d", code)
}
