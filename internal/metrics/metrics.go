package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 缓存层级标签
const (
	TierMemory = "memory"
	TierRedis  = "redis"
	TierTree   = "tree"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_requests_total",
		Help: "Total number of API requests by route and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facility_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	AggregateDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facility_aggregate_duration_ms",
		Help:    "Filter, aggregate and breakdown duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 20, 50, 100, 200},
	}, []string{"category"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_cache_hits_total",
		Help: "Total cache hits by tier",
	}, []string{"tier"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_cache_misses_total",
		Help: "Total cache misses by tier",
	}, []string{"tier"})
	ParseWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_parse_warnings_total",
		Help: "Total tabular parse warnings by kind",
	}, []string{"kind"})
	SourceLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_source_loads_total",
		Help: "Total source reads by source and result",
	}, []string{"source", "result"})
	GapsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facility_gaps_total",
		Help: "Total benchmark gaps reported by category and severity",
	}, []string{"category", "severity"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "facility_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
	PanicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "facility_panics_total",
		Help: "Total handler panics recovered",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(AggregateDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(ParseWarningsTotal)
	prometheus.MustRegister(SourceLoadsTotal)
	prometheus.MustRegister(GapsTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(PanicsTotal)
}

// CacheResult：按层级记录一次命中或未命中
func CacheResult(tier string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(tier).Inc()
		return
	}
	CacheMissesTotal.WithLabelValues(tier).Inc()
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 {API_BASE}/metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
