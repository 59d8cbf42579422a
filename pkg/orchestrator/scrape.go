package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/viewroyal/civicpipe/pkg/capability"
)

// docKindSubfolder maps a ScrapedDocument's Kind to the archive
// subfolder it's saved under.
var docKindSubfolder = map[string]string{
	"agenda":     "Agenda",
	"minutes":    "Minutes",
	"attachment": "Attachments",
}

// scrapeDocuments runs phase 1 (§4.1): list every meeting the scraper
// knows about since the given cutoff and download whatever document
// links it carries into the meeting's archive folder, creating the
// folder if it doesn't already exist. The scraper only resolves
// listings and links (capability.Scraper); actually fetching the bytes
// onto disk is this package's job, not the scraper's.
func (o *Orchestrator) scrapeDocuments(ctx context.Context, since time.Time) (int, error) {
	meetings, err := o.scraper.ListMeetings(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list meetings: %w", err)
	}

	downloaded := 0
	for _, m := range meetings {
		folder := meetingFolderPath(o.archiveRoot, m)
		for _, doc := range m.Documents {
			subfolder, ok := docKindSubfolder[doc.Kind]
			if !ok {
				subfolder = "Agenda"
			}
			destDir := filepath.Join(folder, subfolder)
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				o.logger.Error("create document folder failed", "dir", destDir, "error", err)
				continue
			}
			if err := o.downloadDocument(ctx, doc, destDir); err != nil {
				o.logger.Error("download document failed", "url", doc.URL, "error", err)
				continue
			}
			downloaded++
		}
	}
	return downloaded, nil
}

// meetingFolderPath builds the archive folder name for a scraped
// listing, matching the "YYYY-MM-DD Meeting Type" convention
// changedetector.ExtractDateFromString/InferMeetingType parse back out.
func meetingFolderPath(archiveRoot string, m capability.ScrapedMeeting) string {
	name := fmt.Sprintf("%s %s", m.Date.Format("2006-01-02"), m.MeetingType)
	return filepath.Join(archiveRoot, name)
}

func (o *Orchestrator) downloadDocument(ctx context.Context, doc capability.ScrapedDocument, destDir string) error {
	destPath := filepath.Join(destDir, filepath.Base(doc.URL))
	if _, err := os.Stat(destPath); err == nil {
		return nil // already downloaded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", doc.URL, resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}
