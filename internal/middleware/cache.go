package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/config"
)

// teeWriter forwards the response to the client and keeps a copy of the
// body up to limit bytes.
type teeWriter struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	written  int
	limit    int
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.written += len(b)
	if w.limit > 0 && w.written > w.limit {
		w.overflow = true
	}
	if !w.overflow {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// cachedResponse is what a Redis entry holds.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// cacheableHeaders describe the body itself.  Everything else (CORS, request
// id, rate-limit counters, Vary) belongs to the request that produced the
// entry and is set afresh by the middleware in front of the cache.
var cacheableHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderContentEncoding,
	"Content-Language",
}

// storeScript writes KEYS[1] only while the generation in KEYS[2] still
// equals ARGV[2], the value read before the handler ran.  A purge in
// between bumps the generation and the possibly stale body is dropped.
// ARGV: payload, generation, ttl_ms.
var storeScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// generationKey sits outside the "<prefix>:*" pattern Purge deletes.
func generationKey(prefix string) string { return prefix + "#gen" }

type responseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// key hashes the concrete request path (and query unless ignored) under the
// prefix, so /numbers/1 and /numbers/2 get separate entries.
func (rc *responseCache) key(r *http.Request) string {
	id := r.URL.Path
	if !rc.cfg.IgnoreQuery && r.URL.RawQuery != "" {
		id += "?" + r.URL.RawQuery
	}
	sum := sha256.Sum256([]byte(id))
	return rc.cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

func (rc *responseCache) lookup(ctx context.Context, key string) (cachedResponse, bool) {
	var cr cachedResponse
	raw, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return cr, false
	}
	if err := json.Unmarshal(raw, &cr); err != nil || cr.Status == 0 {
		return cr, false
	}
	return cr, true
}

// generation returns the current purge generation ("0" before the first
// purge).  ok is false when Redis could not be asked.
func (rc *responseCache) generation(ctx context.Context) (gen string, ok bool) {
	gen, err := rc.rdb.Get(ctx, generationKey(rc.cfg.Prefix)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		return "", false
	}
	return gen, true
}

func (rc *responseCache) store(ctx context.Context, key, gen string, cr cachedResponse) {
	raw, err := json.Marshal(cr)
	if err != nil {
		return
	}
	keys := []string{key, generationKey(rc.cfg.Prefix)}
	err = storeScript.Run(context.WithoutCancel(ctx), rc.rdb, keys, raw, gen, rc.cfg.TTL.Milliseconds()).Err()
	if err != nil {
		zap.L().Debug("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// bodyHeaders copies the cacheable subset of h.
func bodyHeaders(h http.Header) http.Header {
	out := http.Header{}
	for _, k := range cacheableHeaders {
		if vals := h.Values(k); len(vals) > 0 {
			out[k] = append([]string(nil), vals...)
		}
	}
	return out
}

// replay answers from a cached entry.  Headers already on the live response
// win over cached ones.
func replay(c echo.Context, cr cachedResponse) error {
	h := c.Response().Header()
	for _, k := range cacheableHeaders {
		if h.Get(k) != "" {
			continue
		}
		if vals := cr.Header.Values(k); len(vals) > 0 {
			h[k] = append([]string(nil), vals...)
		}
	}
	h.Set("X-Cache", "HIT")
	return c.Blob(cr.Status, h.Get(echo.HeaderContentType), cr.Body)
}

// NewRedisCache serves repeated GETs from Redis.  Only 200 responses are
// stored, and only when no purge ran while the handler was producing them.
// Without Redis it is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	rc := &responseCache{cfg: cfg, rdb: rdb}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			ctx := req.Context()
			key := rc.key(req)
			if cr, ok := rc.lookup(ctx, key); ok {
				return replay(c, cr)
			}
			gen, genOK := rc.generation(ctx) // read before the handler touches the ledger

			w := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if !genOK || w.status != http.StatusOK || w.overflow {
				return nil
			}
			rc.store(ctx, key, gen, cachedResponse{
				Status: w.status,
				Header: bodyHeaders(c.Response().Header()),
				Body:   w.body.Bytes(),
			})
			return nil
		}
	}
}

// CachePurger drops every cached response under the cache prefix.  A nil
// purger is a no-op.
type CachePurger struct {
	prefix string
	rdb    *redis.Client
}

// NewCachePurger returns nil when caching is off.
func NewCachePurger(cfg config.CacheConfig, rdb *redis.Client) *CachePurger {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &CachePurger{prefix: cfg.Prefix, rdb: rdb}
}

// Purge bumps the generation, so reads still in flight do not store, then
// deletes the cached entries.  Failures are logged, not returned.
func (p *CachePurger) Purge(ctx context.Context) {
	if p == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := p.rdb.Incr(ctx, generationKey(p.prefix)).Err(); err != nil {
		zap.L().Warn("cache generation bump failed", zap.Error(err))
	}

	var keys []string
	iter := p.rdb.Scan(ctx, 0, p.prefix+":*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		zap.L().Warn("cache purge scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := p.rdb.Unlink(ctx, keys...).Err(); err != nil {
		zap.L().Warn("cache purge failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
