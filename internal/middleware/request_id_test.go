package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_Generated(t *testing.T) {
	router := setupTestGin()
	router.Use(RequestID())

	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("Expected a generated request id on the response")
	}
	if seen != id {
		t.Errorf("Expected context id %q to match response header %q", seen, id)
	}
}

func TestRequestID_ClientSupplied(t *testing.T) {
	router := setupTestGin()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "client-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get(RequestIDHeader); id != "client-id-123" {
		t.Errorf("Expected client-supplied id to be echoed, got %q", id)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	router := setupTestGin()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	ids := make(map[string]bool)
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		ids[w.Header().Get(RequestIDHeader)] = true
	}

	if len(ids) != 5 {
		t.Errorf("Expected 5 distinct request ids, got %d", len(ids))
	}
}
