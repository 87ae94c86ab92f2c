package api

import (
	"net/http"
	"testing"

	"go-shop/internal/config"
)

func TestSetupRouter_BasicRoutes(t *testing.T) {
	s := newTestServer(t)

	if w := s.do("GET", "/health", nil, ""); w.Code != http.StatusOK {
		t.Errorf("GET /health should return 200, got %d", w.Code)
	}
	if w := s.do("GET", "/swagger/doc.json", nil, ""); w.Code != http.StatusOK {
		t.Errorf("GET /swagger/doc.json should return 200, got %d", w.Code)
	}
	if w := s.do("GET", "/api/products", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/products without token should return 401, got %d", w.Code)
	}
}

func TestSetupRouter_Subpath(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Server.Subpath = "/shop" })

	if w := s.do("GET", "/shop/health", nil, ""); w.Code != http.StatusOK {
		t.Errorf("GET /shop/health should return 200, got %d", w.Code)
	}
	if w := s.do("POST", "/shop/api/login", map[string]string{"email": "a@example.com", "password": "x"}, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("POST /shop/api/login should reach the login handler, got %d", w.Code)
	}
	if w := s.do("GET", "/health", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("unprefixed route should not exist, got %d", w.Code)
	}
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.CORS.AllowOrigins = []string{"http://app.example.com"} })

	req := newRequest("OPTIONS", "/api/products")
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := serve(s, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials to be allowed, got %q", got)
	}
}
