// 包 api：HTTP 路由；挂载在主入口的 API_BASE 前缀下
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"facility-api/internal/dataset"
	"facility-api/internal/facility"
	"facility-api/internal/location"
	"facility-api/internal/logger"
	"facility-api/internal/metrics"
	"facility-api/internal/middleware"
	"facility-api/internal/report"

	"github.com/gorilla/mux"
)

// Invalidator：缓存失效能力（由 dataset.Loader 提供）
type Invalidator interface {
	Invalidate(ctx context.Context, c facility.Category, district string)
	InvalidateCategory(ctx context.Context, c facility.Category) int
	InvalidateAll(ctx context.Context)
	InvalidateTrees()
}

// Deps：路由依赖
type Deps struct {
	Service    *report.Service
	Cache      Invalidator
	AdminToken string
}

type handler struct{ Deps }

// BuildRoutes：构建 API 路由
func BuildRoutes(d Deps) *mux.Router {
	h := handler{d}
	r := mux.NewRouter()
	r.Use(instrument)
	r.HandleFunc("/metrics/{category}", h.metrics).Methods(http.MethodGet)
	r.HandleFunc("/breakdown/{category}", h.breakdown).Methods(http.MethodGet)
	r.HandleFunc("/schema/{category}", h.schema).Methods(http.MethodGet)
	r.HandleFunc("/locations/{code}", h.locate).Methods(http.MethodGet)
	r.Handle("/cache/invalidate", middleware.RequireToken(d.AdminToken)(http.HandlerFunc(h.invalidate))).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument：按路由模板统计请求数与耗时
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		start := time.Now()
		rw := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusOf：错误 → HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, facility.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, location.ErrLocationNotFound),
		errors.Is(err, dataset.ErrSourceNotFound),
		errors.Is(err, dataset.ErrTreeNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.L().Error("request_error", "path", r.URL.Path, "err", err, "request_id", logger.RequestID(r.Context()))
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func locationQuery(r *http.Request) location.NameFilter {
	q := r.URL.Query()
	return location.NameFilter{
		District:  q.Get("district"),
		Subcounty: q.Get("subcounty"),
		Parish:    q.Get("parish"),
		Village:   q.Get("village"),
	}
}
