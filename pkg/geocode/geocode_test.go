package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddressList_MultiNumber(t *testing.T) {
	got := NormalizeAddressList("105, 106 and 107 Glentana Road")
	assert.Equal(t, []string{"105 Glentana Road", "106 Glentana Road", "107 Glentana Road"}, got)
}

func TestNormalizeAddressList_TwoStreets(t *testing.T) {
	got := NormalizeAddressList("Main St and 2nd Ave")
	assert.Equal(t, []string{"Main St", "2nd Ave"}, got)
}

func TestNormalizeAddressList_Single(t *testing.T) {
	assert.Equal(t, []string{"123 Helmcken Road"}, NormalizeAddressList("123 Helmcken Road"))
}

func TestNormalizeAddressList_Empty(t *testing.T) {
	assert.Nil(t, NormalizeAddressList(""))
}

func TestIsAddressLike(t *testing.T) {
	assert.True(t, IsAddressLike("123 Main St"))
	assert.False(t, IsAddressLike("Various"))
	assert.False(t, IsAddressLike("TBD"))
}

func TestGeocode_AppendsContextAndParses(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"lat": "48.45", "lon": "-123.45"}})
	}))
	defer srv.Close()

	c := New(50, "View Royal, BC, Canada", []string{"view royal", "victoria", "bc"})
	c.apiBase = srv.URL

	pt, err := c.Geocode(context.Background(), "123 Helmcken Road")
	require.NoError(t, err)
	require.NotNil(t, pt)
	assert.InDelta(t, 48.45, pt.Lat, 0.0001)
	assert.InDelta(t, -123.45, pt.Lng, 0.0001)
	assert.Contains(t, gotQuery, "View Royal, BC, Canada")
}

func TestGeocode_SkipsNonAddress(t *testing.T) {
	c := New(50, "View Royal, BC, Canada", nil)
	pt, err := c.Geocode(context.Background(), "Various")
	require.NoError(t, err)
	assert.Nil(t, pt)
}

func TestPointToWKT(t *testing.T) {
	p := Point{Lat: 48.45, Lng: -123.45}
	assert.Contains(t, p.ToWKT(), "POINT(-123.450000 48.450000)")
}
