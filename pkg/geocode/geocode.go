// Package geocode resolves agenda-item addresses to lat/lng points for
// the Ingester's geocoding pass (§4.10). Grounded directly on
// original_source/apps/pipeline/pipeline/ingestion/ingester.py's
// geocode_address/_geocode_agenda_items (Nominatim search, 1.1s
// between requests, municipality-context append, non-address-prefix
// skip) and normalize_address_list (multi-number "105, 106 and 107 X
// Road" / "A and B" splitting). Reworked into Go: golang.org/x/time/
// rate in place of time.sleep(1.1) — the same library SPEC_FULL.md
// wires for this exact concern, grounded on other_examples/EV-Backend.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

var nonAddressPrefixes = []string{"various", "n/a", "tbd", "none", "multiple", "all", "general"}

// Point is a geocoded location.
type Point struct {
	Lat float64
	Lng float64
}

// Client geocodes addresses against Nominatim, rate-limited to
// Nominatim's documented 1 request/second usage policy.
type Client struct {
	httpClient      *http.Client
	limiter         *rate.Limiter
	userAgent       string
	cityContext     string // appended when the address lacks location context, e.g. "View Royal, BC, Canada"
	contextKeywords []string
	apiBase         string
}

// New creates a Client. requestsPerSecond comes from
// IngestConfig.GeocoderRequestsPerSecond (Open Question #... resolved
// as a configurable rate rather than a hardcoded 1.1s sleep).
func New(requestsPerSecond float64, cityContext string, contextKeywords []string) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	return &Client{
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent:       "civicpipe/1.0 (civic records pipeline)",
		cityContext:     cityContext,
		contextKeywords: contextKeywords,
		apiBase:         nominatimURL,
	}
}

// IsAddressLike reports whether addr looks like a geocodable street
// address rather than a placeholder value.
func IsAddressLike(addr string) bool {
	lower := strings.ToLower(strings.TrimSpace(addr))
	if lower == "" {
		return false
	}
	for _, p := range nonAddressPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// Geocode resolves one address to a point, applying the rate limiter
// and appending the municipality's city context if the address doesn't
// already carry location context.
func (c *Client) Geocode(ctx context.Context, address string) (*Point, error) {
	addr := strings.TrimSpace(address)
	if !IsAddressLike(addr) {
		return nil, nil
	}

	if !c.hasContext(addr) && c.cityContext != "" {
		addr = fmt.Sprintf("%s, %s", addr, c.cityContext)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase, nil)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("q", addr)
	q.Set("format", "json")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lng: %w", err)
	}
	return &Point{Lat: lat, Lng: lng}, nil
}

func (c *Client) hasContext(addr string) bool {
	lower := strings.ToLower(addr)
	for _, kw := range c.contextKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ToWKT renders a point as the EWKT POINT literal stored as text in the
// agenda_items.geo column (SRID=4326, lng before lat).
func (p Point) ToWKT() string {
	return fmt.Sprintf("SRID=4326;POINT(%f %f)", p.Lng, p.Lat)
}

var multiNumRe = regexp.MustCompile(`(?i)^((?:\d+,\s*)*)(\d+)\s+(?:and|&)\s+(\d+)\s+(.*)$`)
var splitRe = regexp.MustCompile(`(?i),\s*|\s+and\s+`)

// NormalizeAddressList expands a raw address field into one or more
// individual street addresses: "105, 106 and 107 Glentana Road" splits
// into three; "Main St and 2nd Ave" splits into two; anything else
// passes through as a single-element list.
func NormalizeAddressList(raw string) []string {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return nil
	}

	if m := multiNumRe.FindStringSubmatch(addr); m != nil {
		prevNums := strings.Fields(strings.ReplaceAll(m[1], ",", " "))
		nums := append(prevNums, m[2], m[3])
		street := strings.TrimSpace(m[4])
		out := make([]string, 0, len(nums))
		for _, n := range nums {
			out = append(out, strings.TrimSpace(n)+" "+street)
		}
		return out
	}

	parts := splitRe.Split(addr, -1)
	if len(parts) > 1 {
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	return []string{addr}
}
