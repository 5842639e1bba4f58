package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSimpleTokenBucketExhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow(nil, "1.2.3.4") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow(nil, "1.2.3.4") {
		t.Fatal("request over capacity should be denied")
	}
}

func TestSimpleTokenBucketPerKey(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	if !l.Allow(nil, "1.1.1.1") {
		t.Fatal("first key should pass")
	}
	if !l.Allow(nil, "2.2.2.2") {
		t.Fatal("second key has its own bucket")
	}
	if l.Allow(nil, "1.1.1.1") {
		t.Fatal("first key is out of tokens")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewSimpleTokenBucket(1, 1)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
}
