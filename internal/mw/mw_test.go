package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	hits := 0
	status := http.StatusOK

	r := gin.New()
	r.Use(FlushOnWrite(store))
	r.GET("/search", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(status, gin.H{"q": c.Query("q"), "n": hits})
	})
	r.POST("/write", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	first := perform(r, http.MethodGet, "/search?q=jane")
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	second := perform(r, http.MethodGet, "/search?q=jane")
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, hits)

	perform(r, http.MethodGet, "/search?q=john")
	assert.Equal(t, 2, hits, "different query, different key")

	perform(r, http.MethodPost, "/fail")
	perform(r, http.MethodGet, "/search?q=jane")
	assert.Equal(t, 2, hits, "failed writes keep the cache")

	perform(r, http.MethodPost, "/write")
	perform(r, http.MethodGet, "/search?q=jane")
	assert.Equal(t, 3, hits, "successful writes flush the cache")

	status = http.StatusBadGateway
	store.Flush()
	perform(r, http.MethodGet, "/search?q=err")
	perform(r, http.MethodGet, "/search?q=err")
	assert.Equal(t, 5, hits, "errors are never cached")
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/").Code)
	limited := perform(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, limited.Body.String())
}

func TestIPRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	a := l.GetLimiter("10.0.0.1")
	assert.Same(t, a, l.GetLimiter("10.0.0.1"))
	l.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, l.Len())

	now = now.Add(visitorIdle + time.Minute)
	l.GetLimiter("10.0.0.3")
	assert.Equal(t, 1, l.Len())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDHeader)) })

	w := perform(r, http.MethodGet, "/")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "3f1c0f0e-4a52-4c1a-9d2f-2a3a5b6c7d8e")
	r.ServeHTTP(w, req)
	assert.Equal(t, "3f1c0f0e-4a52-4c1a-9d2f-2a3a5b6c7d8e", w.Header().Get(RequestIDHeader))
}
