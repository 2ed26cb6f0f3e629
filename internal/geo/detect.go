// Package geo determines the coordinate prayer times are calculated for.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

// Location holds geographic coordinates detected from the user's IP.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Coordinate returns the location as a prayer.Coordinate.
func (l Location) Coordinate() prayer.Coordinate {
	return prayer.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Valid reports whether the coordinate is in range. ip-api reports 0,0
// for addresses it cannot place, so that counts as invalid too.
func (l Location) Valid() bool {
	if l.Latitude == 0 && l.Longitude == 0 {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// ipAPIResponse is the ip-api.com payload: a status envelope around a Location.
type ipAPIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Location
}

// geoAPIURL is a variable so tests can point it at an httptest server.
var geoAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// detectTimeout bounds a detection independently of ctx.
const detectTimeout = 5 * time.Second

// DetectLocation places the machine's public IP with ip-api.com (no API key).
func DetectLocation(ctx context.Context) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoAPIURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", body.Message)
	}
	if !body.Location.Valid() {
		return nil, fmt.Errorf("geolocation returned unusable coordinate %.4f, %.4f", body.Latitude, body.Longitude)
	}

	loc := body.Location
	return &loc, nil
}
