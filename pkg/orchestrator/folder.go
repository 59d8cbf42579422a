package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/agendaitem"
	"github.com/viewroyal/civicpipe/ent/matter"
	"github.com/viewroyal/civicpipe/pkg/changedetector"
	matterpkg "github.com/viewroyal/civicpipe/pkg/matter"
)

// walkMeetingFolders finds every folder under root containing an
// Agenda/ or Audio/ subdirectory, the same presence test the change
// detector uses for new-meeting discovery.
func walkMeetingFolders(root string) ([]string, error) {
	var folders []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if changedetector.IsMeetingFolder(path) {
			folders = append(folders, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive root %s: %w", root, err)
	}
	return folders, nil
}

// resolveTarget implements §4.1's target resolution: a target is either
// a store ID (resolved to its archive_path) or a filesystem path taken
// as-is.
func resolveTarget(ctx context.Context, db *ent.Client, target string) (string, error) {
	id, err := strconv.Atoi(target)
	if err != nil {
		if _, statErr := os.Stat(target); statErr != nil {
			return "", fmt.Errorf("target %q is neither a meeting ID nor an existing path: %w", target, statErr)
		}
		return target, nil
	}

	m, err := db.Meeting.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve meeting id %d: %w", id, err)
	}
	if m.ArchivePath == nil || *m.ArchivePath == "" {
		return "", fmt.Errorf("meeting id %d has no archive_path", id)
	}
	return *m.ArchivePath, nil
}

// seedMatterIndex loads every matter already on record for a
// municipality into idx, joining in each matter's related addresses from
// its agenda items, so a fresh run's matter matching sees the full
// history rather than re-creating matters it already knows about.
func seedMatterIndex(ctx context.Context, db *ent.Client, municipalityID int, idx *matterpkg.Index) error {
	matters, err := db.Matter.Query().Where(matter.MunicipalityID(municipalityID)).All(ctx)
	if err != nil {
		return fmt.Errorf("list matters: %w", err)
	}
	for _, m := range matters {
		addresses, err := matterAddresses(ctx, db, m.ID)
		if err != nil {
			return fmt.Errorf("matter %d addresses: %w", m.ID, err)
		}
		idx.Seed(m.ID, m.Identifier, m.Title, addresses)
	}
	return nil
}

// matterAddresses collects the union of related_address entries across
// every agenda item linked to matterID, since a matter's own row carries
// no address of its own — only its agenda items do.
func matterAddresses(ctx context.Context, db *ent.Client, matterID int) ([]string, error) {
	items, err := db.AgendaItem.Query().Where(agendaitem.MatterID(matterID)).All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		for _, addr := range item.RelatedAddress {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out, nil
}
