package ingest

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/ent/meeting"
	"github.com/viewroyal/civicpipe/pkg/capability"
)

// Store adapts an Ingester's ent client to capability.Store, the narrow
// read surface the Change Detector depends on.
type Store struct {
	ig *Ingester
}

// NewStore wraps an Ingester for use as a capability.Store.
func NewStore(ig *Ingester) *Store {
	return &Store{ig: ig}
}

var _ capability.Store = (*Store)(nil)

// KnownArchivePaths returns every non-null archive_path already recorded
// for this municipality.
func (s *Store) KnownArchivePaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.ig.db.Meeting.Query().
		Where(meeting.MunicipalityID(s.ig.municipalityID), meeting.ArchivePathNotNil()).
		Select(meeting.FieldArchivePath).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query archive paths: %w", err)
	}
	out := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.ArchivePath != nil {
			out[*r.ArchivePath] = struct{}{}
		}
	}
	return out, nil
}

// AuditFlags returns the has_agenda/has_minutes/has_transcript state of
// every known meeting for this municipality.
func (s *Store) AuditFlags(ctx context.Context) ([]capability.MeetingAuditFlags, error) {
	rows, err := s.ig.db.Meeting.Query().
		Where(meeting.MunicipalityID(s.ig.municipalityID), meeting.ArchivePathNotNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query meetings for audit: %w", err)
	}
	out := make([]capability.MeetingAuditFlags, 0, len(rows))
	for _, r := range rows {
		if r.ArchivePath == nil {
			continue
		}
		out = append(out, capability.MeetingAuditFlags{
			ArchivePath:   *r.ArchivePath,
			MeetingDate:   r.MeetingDate.Format("2006-01-02"),
			MeetingType:   r.Type,
			HasAgenda:     r.HasAgenda,
			HasMinutes:    r.HasMinutes,
			HasTranscript: r.HasTranscript,
		})
	}
	return out, nil
}
