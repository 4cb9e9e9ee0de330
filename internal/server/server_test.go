package server

import (
	"net/http/httptest"
	"testing"

	"backend-trailmeter/internal/config"
	"backend-trailmeter/internal/locate"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{ServerPort: ":0", ProbeTimeoutMS: 5000}, locate.NewNMEAProvider("localhost:0"), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestSessionRouteRegistered(t *testing.T) {
	s := NewServer(config.Config{ServerPort: ":0", ProbeTimeoutMS: 5000}, locate.NewNMEAProvider("localhost:0"), nil)

	req := httptest.NewRequest("GET", "/session", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}
