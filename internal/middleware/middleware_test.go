package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/raffle-ticket-sales/internal/config"
)

type stubVerifier map[string]uint64

func (s stubVerifier) Verify(raw string) (uint64, error) {
	if uid, ok := s[raw]; ok {
		return uid, nil
	}
	return 0, errors.New("bad token")
}

func protectedServer() *echo.Echo {
	e := echo.New()
	g := e.Group("", BearerAuth(stubVerifier{"good": 42}))
	g.GET("/me", func(c echo.Context) error {
		uid, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": uid})
	})
	return e
}

func TestBearerAuth(t *testing.T) {
	e := protectedServer()
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":42}`, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}

func newContext(method, target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(method, target, nil), httptest.NewRecorder())
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	rc := &responseCache{cfg: config.CacheConfig{Prefix: "rifa:cache"}}
	get := func(target string) string {
		return rc.key(httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.NotEqual(t, get("/api/numbers/1"), get("/api/numbers/2"))
	assert.Equal(t, get("/api/numbers/1"), get("/api/numbers/1"))
	assert.NotEqual(t, get("/api/numbers?x=1"), get("/api/numbers"))
	assert.Regexp(t, `^rifa:cache:[0-9a-f]{64}$`, get("/api/numbers/1"))

	rc.cfg.IgnoreQuery = true
	assert.Equal(t, get("/api/numbers?x=1"), get("/api/numbers"))
}

func TestReplayRestoresResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/stats", nil), rec)

	err := replay(c, cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}, "Content-Length": {"999"}},
		Body:   []byte(`{"ok":true}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestTeeWriterStopsCopyingPastLimit(t *testing.T) {
	w := &teeWriter{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = w.Write([]byte("abc"))
	assert.False(t, w.overflow)
	_, _ = w.Write([]byte("de"))
	assert.True(t, w.overflow)
	assert.Equal(t, "abc", w.body.String())
}

func TestCacheAndLimiterDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "pong", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.Nil(t, NewCachePurger(config.CacheConfig{Enabled: true}, nil))
}

func TestBuildRateKey(t *testing.T) {
	c := newContext(http.MethodPost, "/api/purchase/3")
	c.SetPath("/api/purchase/:id")
	c.Request().Header.Set(echo.HeaderXRealIP, "10.0.0.1")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /api/purchase/:id", buildRateKey(cfg, c))

	c.Set(ContextUserID, uint64(9))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:9", buildRateKey(cfg, c))
}

func TestBuildRateKeyUnknownStrategyUsesAllParts(t *testing.T) {
	c := newContext(http.MethodGet, "/api/stats")
	c.SetPath("/api/stats")
	c.Request().Header.Set(echo.HeaderXRealIP, "10.0.0.2")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "bogus"}
	assert.Equal(t, "rl:ip:10.0.0.2:user:anon:route:GET /api/stats", buildRateKey(cfg, c))
}
