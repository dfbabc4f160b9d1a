package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestDetector(url string) *IPDetector {
	return &IPDetector{URL: url, Client: &http.Client{Timeout: 2 * time.Second}}
}

func TestIPDetector_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ipAPIResponse{
			Status:     "success",
			Lat:        21.4225,
			Lon:        39.8262,
			City:       "Mecca",
			RegionName: "Makkah Province",
			Country:    "Saudi Arabia",
			Timezone:   "Asia/Riyadh",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	loc, err := newTestDetector(server.URL).Resolve(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 21.4225 {
		t.Errorf("Latitude = %v, want %v", loc.Latitude, 21.4225)
	}
	if loc.Longitude != 39.8262 {
		t.Errorf("Longitude = %v, want %v", loc.Longitude, 39.8262)
	}
	if loc.City != "Mecca" {
		t.Errorf("City = %q, want %q", loc.City, "Mecca")
	}
	if loc.Admin != "Makkah Province" {
		t.Errorf("Admin = %q, want %q", loc.Admin, "Makkah Province")
	}
	if loc.Country != "Saudi Arabia" {
		t.Errorf("Country = %q, want %q", loc.Country, "Saudi Arabia")
	}
	if loc.Timezone != "Asia/Riyadh" {
		t.Errorf("Timezone = %q, want %q", loc.Timezone, "Asia/Riyadh")
	}
}

func TestIPDetector_NamedQueryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("detector should not call the API for a named place")
	}))
	defer server.Close()

	_, err := newTestDetector(server.URL).Resolve(context.Background(), Query{City: "Cairo", Country: "Egypt"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestIPDetector_APIFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ipAPIResponse{
			Status:  "fail",
			Message: "reserved range",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestDetector(server.URL).Detect(context.Background())
	if err == nil {
		t.Fatal("expected error for failed status, got nil")
	}
	if !strings.Contains(err.Error(), "reserved range") {
		t.Errorf("error should contain message, got: %v", err)
	}
}

func TestIPDetector_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestDetector(server.URL).Detect(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention 500, got: %v", err)
	}
}

func TestIPDetector_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	_, err := newTestDetector(server.URL).Detect(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error should mention decode, got: %v", err)
	}
}

func TestIPDetector_ConnectionRefused(t *testing.T) {
	_, err := newTestDetector("http://127.0.0.1:1").Detect(context.Background()) // nothing listening
	if err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestIPDetector_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDetector(server.URL).Detect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
