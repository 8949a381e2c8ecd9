package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"inventory-backend/application/ports"
	"inventory-backend/pkg/cache"
)

// responseBuffer captures a handler's response without writing it to the
// client, so the middleware can inspect the status and body before
// deciding to cache, invalidate, or decorate.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header)}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *responseBuffer) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

func (b *responseBuffer) success() bool {
	return b.statusCode() >= 200 && b.statusCode() < 300
}

// flush writes the buffered response to the client, optionally replacing
// the body. Content-Length is dropped because the body may have changed.
func (b *responseBuffer) flush(w http.ResponseWriter, body []byte) {
	for key, values := range b.header {
		if key == "Content-Length" {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(b.statusCode())
	_, _ = w.Write(body)
}

// CacheResponses serves GET requests from the response cache and fills
// the cache from successful handler responses. Every other method passes
// through untouched. The cache key is the exact request path plus query
// string, so each pagination/search/sort combination is its own entry.
func CacheResponses(store ports.ResponseCache, ttl time.Duration, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.RequestURI()

			if body, storedAt, ok := store.Get(key); ok {
				cache.Hits.Inc()
				logger.Debug("Cache hit", zap.String("key", key))
				writeEnvelope(w, decorate(body, true, storedAt, logger))
				return
			}
			cache.Misses.Inc()

			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)

			body := buf.body.Bytes()
			if buf.success() {
				// Store the undecorated envelope; hit/miss bookkeeping is
				// recomputed on every response.
				store.Set(key, body, ttl)
				cache.Entries.Set(float64(store.Len()))
				logger.Debug("Cached fresh response",
					zap.String("key", key),
					zap.Duration("ttl", ttl),
				)
				setNoStoreHeaders(buf.header)
				body = decorate(body, false, time.Now(), logger)
			}

			buf.flush(w, body)
		})
	}
}

// InvalidateOnWrite purges every cache entry under prefix after a
// successful mutating request. The purge happens after the handler runs
// but before the response is flushed to the client, so a read arriving
// after the client observes the write can never see stale data. Failed
// mutations leave the cache untouched.
func InvalidateOnWrite(store ports.ResponseCache, prefix string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)

			if buf.success() {
				invalidate(store, prefix, r.Method, logger)
			}

			buf.flush(w, buf.body.Bytes())
		})
	}
}

// invalidate never lets a purge failure reach the mutating response.
func invalidate(store ports.ResponseCache, prefix, method string, logger *zap.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Cache invalidation panicked",
				zap.Any("panic", rec),
				zap.String("prefix", prefix),
			)
		}
	}()

	removed := store.DeleteByPrefix(prefix)
	cache.Invalidations.Add(float64(removed))
	cache.Entries.Set(float64(store.Len()))

	if removed > 0 {
		logger.Info("Invalidated cache entries",
			zap.Int("count", removed),
			zap.String("prefix", prefix),
			zap.String("method", method),
		)
	}
}

// decorate adds the cached flag and cacheTimestamp to a JSON envelope
// without altering the cached data's shape. Anything that is not a JSON
// object is returned unchanged.
func decorate(body []byte, hit bool, at time.Time, logger *zap.Logger) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Warn("Cannot decorate non-object response", zap.Error(err))
		return body
	}

	cachedFlag, _ := json.Marshal(hit)
	timestamp, _ := json.Marshal(at.Format(time.RFC3339))
	envelope["cached"] = cachedFlag
	envelope["cacheTimestamp"] = timestamp

	decorated, err := json.Marshal(envelope)
	if err != nil {
		return body
	}
	return decorated
}

func writeEnvelope(w http.ResponseWriter, body []byte) {
	setNoStoreHeaders(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// setNoStoreHeaders forces the browser to revalidate; the server cache
// is the only cache in play.
func setNoStoreHeaders(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
