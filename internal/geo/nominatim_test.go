package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/pkg/config"
)

func newTestClient(t *testing.T, payload string) (*NominatimClient, *string) {
	t.Helper()
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(server.Close)

	cfg := config.GeoConfig{GeocoderBaseURL: server.URL, UserAgent: "evidence-api-test"}
	return NewNominatimClient(cfg, server.Client(), zap.NewNop()), &gotQuery
}

func TestNominatimReversePrefersCityDistrict(t *testing.T) {
	client, query := newTestClient(t, `{"address":{"city_district":"Old Town","city":"Bhimavaram","state":"Andhra Pradesh"}}`)

	place, err := client.Reverse(context.Background(), 16.544123, 81.521)
	require.NoError(t, err)
	assert.Equal(t, Place{Town: "Old Town", Region: "Andhra Pradesh"}, place)

	assert.Contains(t, *query, "lat=16.544123")
	assert.Contains(t, *query, "lon=81.521000")
	assert.Contains(t, *query, "zoom=18")
	assert.Contains(t, *query, "addressdetails=1")
}

func TestNominatimReverseFallbackChain(t *testing.T) {
	cases := []struct {
		payload string
		want    Place
	}{
		{`{"address":{"suburb":"Juvvalapalem","state":"Andhra Pradesh"}}`, Place{"Juvvalapalem", "Andhra Pradesh"}},
		{`{"address":{"village":"Dirusumarru","region":"Coastal Andhra"}}`, Place{"Dirusumarru", "Coastal Andhra"}},
		{`{"address":{"county":"West Godavari"}}`, Place{"West Godavari", "Unknown State"}},
		{`{"address":{}}`, Place{"Unknown Town", "Unknown State"}},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, tc.payload)
		place, err := client.Reverse(context.Background(), 16.5, 81.5)
		require.NoError(t, err)
		assert.Equal(t, tc.want, place)
	}
}

func TestNominatimReverseErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.GeoConfig{GeocoderBaseURL: server.URL, UserAgent: "evidence-api-test"}
	client := NewNominatimClient(cfg, server.Client(), zap.NewNop())

	_, err := client.Reverse(context.Background(), 16.5, 81.5)
	assert.Error(t, err)
}
