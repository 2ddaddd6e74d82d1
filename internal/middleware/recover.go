// 包 middleware：HTTP 入口中间件（panic 恢复、限流、管理令牌校验）
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"

	"facility-api/internal/logger"
	"facility-api/internal/metrics"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Recover：处理函数 panic 时记录堆栈并返回 JSON 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				metrics.PanicsTotal.Inc()
				logger.L().Error("panic_recovered", "path", r.URL.Path, "panic", v,
					"request_id", logger.RequestID(r.Context()), "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireToken：校验 Authorization: Bearer <token> 或 X-Admin-Token
// 约束：token 为空时一律拒绝（管理接口默认关闭）
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusForbidden, "admin endpoints disabled")
				return
			}
			got := r.Header.Get("X-Admin-Token")
			if got == "" {
				got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.L().Warn("admin_token_rejected", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
