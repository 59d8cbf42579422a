package matter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"Bylaw No. 1160":                    "Bylaw 1160",
		"Rezoning Application No. 2025/01":  "REZ 2025-01",
		"Amendment Bylaw No. 1101 to Zoning Bylaw No. 900": "Bylaw 1101",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeIdentifier(in))
	}
}

func TestNormalizeIdentifier_Idempotent(t *testing.T) {
	in := "Bylaw No. 1160"
	once := NormalizeIdentifier(in)
	twice := NormalizeIdentifier(once)
	assert.Equal(t, once, twice)
}

func TestFindMatch_CompoundIdentifierDedup(t *testing.T) {
	idx := NewIndex()
	idx.Seed(42, "Bylaw No. 1160; REZ 2025-01", "Rezoning - 258 Helmcken Road", nil)
	m := NewMatcher(idx)

	result := m.FindMatch("REZ 2025-01", "Rezoning — 258 Helmcken Road", nil)

	assert.True(t, result.Matched())
	assert.Equal(t, 42, *result.MatterID)
	assert.GreaterOrEqual(t, result.Confidence, 0.95)
}

func TestFindMatch_AddressCategoryNumberMismatchRejected(t *testing.T) {
	idx := NewIndex()
	idx.Seed(1, "Bylaw No. 1156", "Bylaw 1156 - Zoning Amendment, 100 Main St", []string{"100 main st"})
	m := NewMatcher(idx)

	result := m.FindMatch("", "Bylaw 1157 - Zoning Amendment", []string{"100 Main St"})

	assert.False(t, result.Matched())
}

func TestFindMatch_NoMatch(t *testing.T) {
	idx := NewIndex()
	m := NewMatcher(idx)
	result := m.FindMatch("Bylaw No. 42", "Something Else", nil)
	assert.False(t, result.Matched())
	assert.Equal(t, "no_match", result.Reason)
}

func TestFindMatch_WriteThroughPreventsDuplicate(t *testing.T) {
	idx := NewIndex()
	m := NewMatcher(idx)

	result := m.FindMatch("Bylaw No. 99", "Bylaw 99 - New Policy", nil)
	assert.False(t, result.Matched())

	m.RegisterNew(7, "Bylaw No. 99", "Bylaw 99 - New Policy", nil)

	result2 := m.FindMatch("Bylaw No. 99", "Bylaw 99 - New Policy", nil)
	assert.True(t, result2.Matched())
	assert.Equal(t, 7, *result2.MatterID)
}

func TestDeriveCategory(t *testing.T) {
	assert.Equal(t, "rezoning", DeriveCategory("Rezoning Application for 123 Main St"))
	assert.Equal(t, "bylaw", DeriveCategory("Bylaw 1160 Amendment"))
	assert.Equal(t, "", DeriveCategory("General correspondence"))
}
