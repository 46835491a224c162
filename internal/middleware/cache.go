package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinemashers/cinemash/internal/config"
)

// cachedResponse is the envelope stored in Redis for one cached GET
// response. The body is JSON (all cacheable endpoints produce JSON), so a
// JSON envelope keeps the whole entry human-inspectable.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder duplicates the response body into a buffer while forwarding
// it to the client, capped at limit bytes. Oversized responses are simply
// not cached.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
	over   bool
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if !br.over {
		if br.buf.Len()+len(b) <= br.limit {
			br.buf.Write(b)
		} else {
			br.over = true
		}
	}
	return br.ResponseWriter.Write(b)
}

// NewRedisCache returns a middleware caching successful GET responses in
// Redis under a digest of route and query string. It is a no-op when
// disabled or when no Redis client is available; cache failures never fail
// the request.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			// The concrete URL path, not the route pattern, so /puzzle/1 and
			// /puzzle/2 get distinct entries.
			sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
			key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var entry cachedResponse
				if json.Unmarshal(raw, &entry) == nil {
					return c.Blob(entry.Status, entry.ContentType, entry.Body)
				}
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}

			// Only settled success responses are worth keeping.
			if rec.status != http.StatusOK || rec.over {
				return nil
			}
			entry := cachedResponse{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			}
			if raw, err := json.Marshal(entry); err == nil {
				_ = rdb.Set(ctx, key, raw, ttl).Err()
			}
			return nil
		}
	}
}
