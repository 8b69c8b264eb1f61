package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2, time.Minute)
	router := gin.New()
	router.Use(RateLimiter(limiter))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, time.Minute)
	limiter.GetLimiter("10.0.0.1")
	limiter.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, limiter.Len())

	assert.Zero(t, limiter.Sweep(time.Now()))
	assert.Equal(t, 2, limiter.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, limiter.Len())
}

func TestCache(t *testing.T) {
	store := NewResponseCache(time.Minute, time.Minute)
	calls := 0
	router := gin.New()
	router.GET("/data", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/data", nil)
		router.ServeHTTP(w, req)
		return w
	}

	first := get()
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())

	second := get()
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())

	store.Flush()
	assert.JSONEq(t, `{"calls":2}`, get().Body.String())
}

func TestCache_FlushDuringRenderIsNotOverwritten(t *testing.T) {
	store := NewResponseCache(time.Minute, time.Minute)
	version, calls := 1, 0
	read := make(chan struct{})
	release := make(chan struct{})
	router := gin.New()
	router.GET("/data", Cache(store, time.Minute), func(c *gin.Context) {
		v := version
		calls++
		if calls == 1 {
			read <- struct{}{}
			<-release
		}
		c.JSON(http.StatusOK, gin.H{"version": v})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		req, _ := http.NewRequest(http.MethodGet, "/data", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}()

	// The data changes and the cache is flushed while the first response is in flight.
	<-read
	version = 2
	store.Flush()
	close(release)
	<-done

	assert.Zero(t, store.ItemCount())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/data", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"version":2}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/bad"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
	}
}
