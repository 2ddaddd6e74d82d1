package middleware

import (
	"net/http"
	"sync"
	"time"

	"facility-api/internal/logger"
	"facility-api/internal/metrics"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：在流量峰值时对入口进行限速，避免数据源与缓存被过载；按配置开关与速率。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429；令牌在每个自然秒开始时补满。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

// NewTokenBucket：qps ≤ 0 时取 200
func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 200
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：超出速率时返回 429
func RateLimit(tb *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.allow() {
				metrics.RateLimitedTotal.Inc()
				logger.L().Debug("rate_limited", "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Options：入口中间件配置
type Options struct {
	RateLimitEnabled bool
	RateLimitQPS     int
}

// Wrap：按固定顺序组合入口中间件（最外层为 panic 恢复）
func Wrap(h http.Handler, o Options) http.Handler {
	if o.RateLimitEnabled {
		h = RateLimit(NewTokenBucket(o.RateLimitQPS))(h)
	}
	return Recover(h)
}
