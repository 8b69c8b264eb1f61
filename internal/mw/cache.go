package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

// ResponseCache stores rendered GET responses. Every Flush starts a new generation;
// a response whose handler started in an older generation is never stored, so a
// read that raced with a flush cannot put stale data back.
type ResponseCache struct {
	store *cache.Cache

	mu  sync.Mutex
	gen uint64
}

// NewResponseCache creates a cache with the given default expiration and cleanup interval.
func NewResponseCache(defaultExpiration, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(defaultExpiration, cleanupInterval)}
}

// Flush drops every entry and invalidates responses still being rendered.
func (rc *ResponseCache) Flush() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.gen++
	rc.store.Flush()
}

// ItemCount returns the number of stored responses, expired ones included.
func (rc *ResponseCache) ItemCount() int {
	return rc.store.ItemCount()
}

func (rc *ResponseCache) generation() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gen
}

func (rc *ResponseCache) get(key string) (cachedResponse, bool) {
	v, found := rc.store.Get(key)
	if !found {
		return cachedResponse{}, false
	}
	return v.(cachedResponse), true
}

// setIfCurrent stores resp unless a Flush happened since gen was read.
func (rc *ResponseCache) setIfCurrent(gen uint64, key string, resp cachedResponse, d time.Duration) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.gen != gen {
		return false
	}
	rc.store.Set(key, resp, d)
	return true
}

// Cache is a middleware for in-memory caching of GET requests.
// Callers that change the underlying data must Flush rc.
func Cache(rc *ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if cached, found := rc.get(key); found {
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set(CacheHeader, "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		// Read before the handler touches the data source.
		gen := rc.generation()

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw
		c.Header(CacheHeader, "MISS")

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			headers.Del(CacheHeader)
			rc.setIfCurrent(gen, key, cachedResponse{
				status:  blw.Status(),
				headers: headers,
				body:    bytes.Clone(blw.body.Bytes()),
			}, duration)
		}
	}
}
