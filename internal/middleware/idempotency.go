package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader names the client-chosen key of a money-moving request.
const IdempotencyHeader = "Idempotency-Key"

// replayedHeader marks a response served from the idempotency cache.
const replayedHeader = "Idempotent-Replayed"

// IdempotencyStore is the subset of pkg/cache.RedisCache the middleware needs.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyMiddleware makes retried POSTs replay the first response instead of moving money twice.
type IdempotencyMiddleware struct {
	store        IdempotencyStore
	ttl          time.Duration
	waitInFlight time.Duration
	pollInterval time.Duration
}

// NewIdempotencyMiddleware constructs an IdempotencyMiddleware with a TTL.
func NewIdempotencyMiddleware(store IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		store:        store,
		ttl:          ttl,
		waitInFlight: 5 * time.Second,
		pollInterval: 100 * time.Millisecond,
	}
}

type capturedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Require rejects requests without an Idempotency-Key and replays cached responses.
// Keys are scoped to the authenticated principal and the route.
func (m *IdempotencyMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": IdempotencyHeader + " header required"})
			return
		}
		userID, _ := GetUserIDFromContext(c)
		scope := userID + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
		dataKey := "idempotency:data:" + scope
		lockKey := "idempotency:lock:" + scope

		if m.replayCached(c, dataKey) {
			return
		}

		ok, err := m.store.SetNX(c.Request.Context(), lockKey, c.Writer.Header().Get(requestIDHeader), m.ttl)
		if err != nil {
			logger.Error("Idempotency lock failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !ok {
			// Another request with this key is in flight; wait for its response.
			deadline := time.Now().Add(m.waitInFlight)
			for time.Now().Before(deadline) {
				time.Sleep(m.pollInterval)
				if m.replayCached(c, dataKey) {
					return
				}
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A request with this " + IdempotencyHeader + " is still in progress"})
			return
		}
		defer func() {
			if err := m.store.Delete(context.WithoutCancel(c.Request.Context()), lockKey); err != nil {
				logger.Warn("Idempotency unlock failed", slog.String("error", err.Error()))
			}
		}()

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if !cacheableStatus(status) {
			return
		}
		resp := capturedResponse{Status: status, ContentType: cw.Header().Get("Content-Type"), Body: cw.buf}
		if err := m.store.Set(context.WithoutCancel(c.Request.Context()), dataKey, resp, m.ttl); err != nil {
			logger.Warn("Caching idempotent response failed", slog.String("error", err.Error()))
		}
	}
}

func (m *IdempotencyMiddleware) replayCached(c *gin.Context, dataKey string) bool {
	var cr capturedResponse
	if err := m.store.Get(c.Request.Context(), dataKey, &cr); err != nil {
		return false
	}
	c.Header(replayedHeader, "true")
	c.Data(cr.Status, cr.ContentType, cr.Body)
	c.Abort()
	return true
}

// cacheableStatus leaves conflicts and server errors uncached so the client can retry them.
func cacheableStatus(status int) bool {
	return status >= 200 && status < 500 && status != http.StatusConflict && status != http.StatusTooManyRequests
}

// captureWriter tees the response body. Responses here are small JSON documents.
type captureWriter struct {
	gin.ResponseWriter
	buf []byte
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return w.ResponseWriter.Write(p)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf = append(w.buf, s...)
	return w.ResponseWriter.WriteString(s)
}
