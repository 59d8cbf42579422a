// Package scraper implements the Scraper capability (§6): discovering a
// municipality's meeting listings and agenda/minutes document links from
// its agenda-management portal. Grounded on emergent-company-emergent's
// tools/niezatapialni-scraper (go-rod browser automation: launcher.New()
// .Headless(...).MustLaunch() + rod.New().ControlURL(...).MustConnect(),
// one shared browser instance reused across page visits, a
// request-delay between navigations).
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/config"
)

// portalSelectors names the CSS selectors used to pull meeting listing
// rows and document links out of each supported portal's rendered DOM.
type portalSelectors struct {
	listingRow    string
	dateAttr      string
	meetingType   string
	documentLinks string
}

var backends = map[string]portalSelectors{
	"civicweb": {
		listingRow:    ".meeting-list-item",
		dateAttr:      "data-meeting-date",
		meetingType:   ".meeting-type",
		documentLinks: "a.document-link",
	},
	"legistar": {
		listingRow:    "tr.rgRow, tr.rgAltRow",
		dateAttr:      "data-date",
		meetingType:   "td.meeting-body",
		documentLinks: "a[href*='View.ashx']",
	},
	"escribe": {
		listingRow:    ".MeetingRow",
		dateAttr:      "data-meetingdate",
		meetingType:   ".MeetingName",
		documentLinks: "a.AgendaLink",
	},
	"generic_html": {
		listingRow:    "article, .meeting, li",
		dateAttr:      "",
		meetingType:   "",
		documentLinks: "a[href$='.pdf']",
	},
}

// Scraper drives a headless (or plain-navigation) browser against one
// municipality's agenda portal.
type Scraper struct {
	cfg     config.ScraperConfig
	browser *rod.Browser
	sel     portalSelectors
}

// New launches the shared browser instance for cfg's backend. Call
// Close when done.
func New(cfg config.ScraperConfig) (*Scraper, error) {
	sel, ok := backends[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("scraper: unknown backend %q", cfg.Backend)
	}

	l := launcher.New().NoSandbox(true).Headless(cfg.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("scraper: launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("scraper: connect to browser: %w", err)
	}

	return &Scraper{cfg: cfg, browser: browser, sel: sel}, nil
}

// Close releases the underlying browser process.
func (s *Scraper) Close() error {
	return s.browser.Close()
}

// ListMeetings navigates to the portal's meeting listing page and
// extracts every meeting scheduled on or after since, along with its
// document links.
func (s *Scraper) ListMeetings(ctx context.Context, since time.Time) ([]capability.ScrapedMeeting, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: s.cfg.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("scraper: open listing page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	timeout := s.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("scraper: wait for listing page load: %w", err)
	}

	rows, err := page.Elements(s.sel.listingRow)
	if err != nil {
		return nil, fmt.Errorf("scraper: select listing rows: %w", err)
	}

	var meetings []capability.ScrapedMeeting
	for _, row := range rows {
		meeting, ok := s.parseRow(row)
		if !ok || meeting.Date.Before(since) {
			continue
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (s *Scraper) parseRow(row *rod.Element) (capability.ScrapedMeeting, bool) {
	var meeting capability.ScrapedMeeting

	dateStr := ""
	if s.sel.dateAttr != "" {
		if attr, err := row.Attribute(s.sel.dateAttr); err == nil && attr != nil {
			dateStr = *attr
		}
	}
	if dateStr == "" {
		return meeting, false
	}
	parsed, err := parseMeetingDate(dateStr)
	if err != nil {
		return meeting, false
	}
	meeting.Date = parsed

	meeting.MeetingType = "Unknown"
	if s.sel.meetingType != "" {
		if el, err := row.Element(s.sel.meetingType); err == nil {
			text, _ := el.Text()
			if strings.TrimSpace(text) != "" {
				meeting.MeetingType = strings.TrimSpace(text)
			}
		}
	}

	links, err := row.Elements(s.sel.documentLinks)
	if err == nil {
		for _, link := range links {
			href, _ := link.Attribute("href")
			if href == nil || *href == "" {
				continue
			}
			title, _ := link.Text()
			meeting.Documents = append(meeting.Documents, capability.ScrapedDocument{
				Title: strings.TrimSpace(title),
				URL:   *href,
				Kind:  classifyDocument(title),
			})
		}
	}

	return meeting, true
}

func classifyDocument(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "minutes"):
		return "minutes"
	case strings.Contains(lower, "agenda"):
		return "agenda"
	default:
		return "attachment"
	}
}

func parseMeetingDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

var _ capability.Scraper = (*Scraper)(nil)
