package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestTokenBucketRefillsEachSecond(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()

	assert.True(t, tb.allow())
	assert.True(t, tb.allow())
	assert.False(t, tb.allow())

	now = now.Add(time.Second)
	assert.True(t, tb.allow())
}

func TestRateLimit(t *testing.T) {
	tb := NewTokenBucket(1)
	h := RateLimit(tb)(ok)
	tb.now = func() time.Time { return time.Unix(tb.lastSec, 0) }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestRecover(t *testing.T) {
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestRequireToken(t *testing.T) {
	h := RequireToken("s3cret")(ok)
	cases := []struct {
		header, value string
		want          int
	}{
		{"X-Admin-Token", "s3cret", http.StatusNoContent},
		{"Authorization", "Bearer s3cret", http.StatusNoContent},
		{"Authorization", "Bearer nope", http.StatusUnauthorized},
		{"", "", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil)
		if c.header != "" {
			req.Header.Set(c.header, c.value)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.want, rec.Code, c.value)
	}

	rec := httptest.NewRecorder()
	RequireToken("")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
