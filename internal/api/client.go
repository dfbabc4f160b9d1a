// Package api is a small client for the public Al Adhan prayer times API. It
// is only used to compare locally computed timings with a reference source.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// School values accepted by the API for the Asr shadow ratio.
const (
	SchoolStandard = 0
	SchoolHanafi   = 1
)

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// Request selects the day, place and method of a timings lookup. Negative
// Method or School leave the choice to the API. Timezone is an IANA name;
// empty lets the API derive it from the coordinates.
type Request struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	Method    int
	School    int
	Timezone  string
}

// FetchByCoordinates fetches prayer times for the given date and coordinates.
func (c *Client) FetchByCoordinates(ctx context.Context, r Request) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, r.Date.Format("02-01-2006"))

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", r.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", r.Longitude))
	if r.Method >= 0 {
		params.Set("method", fmt.Sprintf("%d", r.Method))
	}
	if r.School >= 0 {
		params.Set("school", fmt.Sprintf("%d", r.School))
	}
	if r.Timezone != "" {
		params.Set("timezonestring", r.Timezone)
	}

	return c.doRequest(ctx, endpoint, params)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}

	return &apiResp, nil
}
