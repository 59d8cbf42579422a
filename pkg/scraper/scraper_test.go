package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viewroyal/civicpipe/pkg/config"
)

func TestClassifyDocument(t *testing.T) {
	assert.Equal(t, "agenda", classifyDocument("Council Agenda - March 11"))
	assert.Equal(t, "minutes", classifyDocument("Approved Minutes"))
	assert.Equal(t, "attachment", classifyDocument("Staff Report 2025-01"))
}

func TestParseMeetingDate(t *testing.T) {
	cases := []string{"2025-03-11", "03/11/2025", "March 11, 2025"}
	for _, c := range cases {
		_, err := parseMeetingDate(c)
		assert.NoError(t, err, c)
	}
	_, err := parseMeetingDate("not a date")
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(config.ScraperConfig{Backend: "sharepoint_nonsense"})
	assert.Error(t, err)
}
