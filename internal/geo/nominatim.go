package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/pkg/config"
)

// Place is a reverse-geocoded position.
type Place struct {
	Town   string
	Region string
}

// Geocoder resolves coordinates to a human-readable place.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (Place, error)
}

// NominatimClient talks to an OSM Nominatim endpoint. Nominatim's usage
// policy requires an identifying User-Agent and a capped request rate;
// the tracker enforces the rate.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *zap.Logger
}

// NewNominatimClient builds a reverse geocoder from config.
func NewNominatimClient(cfg config.GeoConfig, client *http.Client, log *zap.Logger) *NominatimClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.GeocodeTimeout}
	}
	return &NominatimClient{
		baseURL:   cfg.GeocoderBaseURL,
		userAgent: cfg.UserAgent,
		client:    client,
		log:       log,
	}
}

type nominatimAddress struct {
	CityDistrict  string `json:"city_district"`
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	City          string `json:"city"`
	County        string `json:"county"`
	State         string `json:"state"`
	Region        string `json:"region"`
}

// Reverse looks up the address for the coordinates at street-level zoom.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	url := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s&zoom=18&addressdetails=1",
		c.baseURL,
		strconv.FormatFloat(lat, 'f', 6, 64),
		strconv.FormatFloat(lng, 'f', 6, 64),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Place{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Address nominatimAddress `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("decode geocode response: %w", err)
	}

	a := body.Address
	place := Place{
		Town:   firstNonEmpty(a.CityDistrict, a.Suburb, a.Neighbourhood, a.Town, a.Village, a.City, a.County),
		Region: firstNonEmpty(a.State, a.Region),
	}
	if place.Town == "" {
		place.Town = "Unknown Town"
	}
	if place.Region == "" {
		place.Region = "Unknown State"
	}
	return place, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
