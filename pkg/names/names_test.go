package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPersonName(t *testing.T) {
	cases := map[string]string{
		"Mayor David Screech":                      "David Screech",
		"K. Anema, Chief Administrative Officer":    "K. Anema",
		"Councillor Jane Doe (via Zoom)":            "Jane Doe",
		"Director of Finance John Smith":            "John Smith",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanPersonName(in))
	}
}

func TestExtractRoles(t *testing.T) {
	roles := ExtractRoles("Director of Finance John Smith")
	assert.Len(t, roles, 1)
	assert.Equal(t, "Director of Finance", roles[0].Role)
	assert.Equal(t, "Staff", roles[0].Organization)
}

func TestExtractRoles_DropsSubset(t *testing.T) {
	roles := ExtractRoles("Director of Finance, a Director")
	assert.Len(t, roles, 1)
	assert.Equal(t, "Director of Finance", roles[0].Role)
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("David Screech"))
	assert.False(t, IsValidName("Staff"))
	assert.False(t, IsValidName("Speaker 1"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("Resident"))
}

func TestCanonicalizer(t *testing.T) {
	c := NewCanonicalizer([]string{"David Screech"}, map[string]string{"screech": "David Screech"})
	assert.Equal(t, "David Screech", c.Canonicalize("Mayor Screech"))
	assert.Equal(t, "David Screech", c.Canonicalize("David Screech"))
}

func TestMatchExisting(t *testing.T) {
	existing := map[int]string{1: "David Screech", 2: "Jane Doe"}
	assert.Equal(t, 1, MatchExisting("Screech", existing))
	assert.Equal(t, 0, MatchExisting("Smith", existing))
	assert.Equal(t, 2, MatchExisting("Jane Doe", existing))
}
