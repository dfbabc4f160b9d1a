package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Timezone   string  `json:"timezone"`
}

// DefaultIPAPIURL is the ip-api.com endpoint. The service is free and needs
// no API key.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,regionName,country,timezone"

// IPDetector locates the machine from its public IP address. It only answers
// empty queries; named places are left to other resolvers.
type IPDetector struct {
	URL    string
	Client *http.Client
}

// NewIPDetector returns a detector for ip-api.com with a 5 second timeout.
func NewIPDetector() *IPDetector {
	return &IPDetector{
		URL:    DefaultIPAPIURL,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *IPDetector) Resolve(ctx context.Context, q Query) (*Location, error) {
	if !q.Empty() {
		return nil, ErrNotFound
	}
	return d.Detect(ctx)
}

// Detect performs the lookup.
func (d *IPDetector) Detect(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	return &Location{
		Coordinate: Coordinate{Latitude: result.Lat, Longitude: result.Lon},
		City:       result.City,
		Admin:      result.RegionName,
		Country:    result.Country,
		Timezone:   result.Timezone,
	}, nil
}
