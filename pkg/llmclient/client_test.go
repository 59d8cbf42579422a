package llmclient

import (
	"testing"

	pb "github.com/viewroyal/civicpipe/proto/civicllmv1"

	"github.com/stretchr/testify/assert"
)

func TestBatchStatus_Done(t *testing.T) {
	tests := []struct {
		name   string
		status pb.BatchStatus
		want   bool
	}{
		{"pending", pb.BatchStatus_BATCH_STATUS_PENDING, false},
		{"in progress", pb.BatchStatus_BATCH_STATUS_IN_PROGRESS, false},
		{"completed", pb.BatchStatus_BATCH_STATUS_COMPLETED, true},
		{"failed", pb.BatchStatus_BATCH_STATUS_FAILED, true},
		{"expired", pb.BatchStatus_BATCH_STATUS_EXPIRED, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BatchStatus{Status: tt.status}
			assert.Equal(t, tt.want, s.Done())
		})
	}
}

func TestNewClient_DialsLazily(t *testing.T) {
	// grpc.NewClient does not block on connection establishment, so this
	// should succeed even against an address with nothing listening.
	c, err := NewClient("localhost:1", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()
	assert.Equal(t, "gpt-4o", c.model)
}
