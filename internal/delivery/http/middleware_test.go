package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elcom/backend/internal/observability"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "http://localhost:5005",
			allowedOrigins: []string{"http://localhost:5005"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "http://localhost:5005",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches first",
			origin:         "http://localhost:5005",
			allowedOrigins: []string{"http://localhost:*", "https://shop.example.com"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "https://shop.example.com",
			allowedOrigins: []string{"http://localhost:*", "https://shop.example.com"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:5005",
			allowedOrigins: []string{},
			want:           false,
		},
		{
			name:           "bare wildcard",
			origin:         "https://anything.example.org",
			allowedOrigins: []string{"*"},
			want:           true,
		},
		{
			name:           "bare wildcard still needs an origin",
			origin:         "",
			allowedOrigins: []string{"*"},
			want:           false,
		},
		{
			name:           "port must match exactly without wildcard",
			origin:         "http://localhost:5006",
			allowedOrigins: []string{"http://localhost:5005"},
			want:           false,
		},
		{
			name:           "partial wildcard match",
			origin:         "http://localhost:5005",
			allowedOrigins: []string{"http://local*"},
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:*"}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin GET", "GET", "http://localhost:5005", http.StatusOK, "http://localhost:5005"},
		{"allowed origin preflight", "OPTIONS", "http://localhost:5005", http.StatusNoContent, "http://localhost:5005"},
		{"disallowed origin", "GET", "http://evil.com", http.StatusOK, ""},
		{"disallowed origin preflight still ends early", "OPTIONS", "http://evil.com", http.StatusNoContent, ""},
		{"no origin header", "GET", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", "POST")
				req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin == "" {
				return
			}
			for _, h := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers", "Access-Control-Max-Age"} {
				if w.Header().Get(h) == "" {
					t.Errorf("%s not set", h)
				}
			}
			if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Errorf("Access-Control-Allow-Credentials not set to true")
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		seen = observability.RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, "OK")
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		got := w.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("X-Request-ID = %q, want a UUID", got)
		}
		if seen != got {
			t.Errorf("context request id = %q, want %q", seen, got)
		}
	})

	t.Run("reuses the caller's id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "widget-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "widget-42" {
			t.Errorf("X-Request-ID = %q, want widget-42", got)
		}
		if seen != "widget-42" {
			t.Errorf("context request id = %q, want widget-42", seen)
		}
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		long := make([]byte, 200)
		for i := range long {
			long[i] = 'a'
		}
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, string(long))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got == string(long) {
			t.Errorf("oversized request id was echoed back")
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(perMinute int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimitMiddleware(perMinute))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	call := func(router *gin.Engine, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("rejects requests over the limit", func(t *testing.T) {
		router := newRouter(2)
		for i := 0; i < 2; i++ {
			if w := call(router, "10.0.0.1"); w.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200", i, w.Code)
			}
		}

		w := call(router, "10.0.0.1")
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
		}
		if w.Header().Get("Retry-After") != "30" {
			t.Errorf("Retry-After = %q, want 30", w.Header().Get("Retry-After"))
		}
	})

	t.Run("limits each client separately", func(t *testing.T) {
		router := newRouter(1)
		if w := call(router, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("first client status = %d", w.Code)
		}
		if w := call(router, "10.0.0.2"); w.Code != http.StatusOK {
			t.Errorf("second client status = %d, want 200", w.Code)
		}
		if w := call(router, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
			t.Errorf("first client repeat status = %d, want 429", w.Code)
		}
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		router := newRouter(0)
		for i := 0; i < 50; i++ {
			if w := call(router, "10.0.0.1"); w.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200", i, w.Code)
			}
		}
	})
}
