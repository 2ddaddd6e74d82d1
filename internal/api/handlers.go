package api

import (
	"net/http"
	"strconv"

	"facility-api/internal/facility"
	"facility-api/internal/report"

	"github.com/gorilla/mux"
)

func (h handler) run(w http.ResponseWriter, r *http.Request, breakdown bool) (*report.Report, bool) {
	c, err := facility.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	rep, err := h.Service.Run(r.Context(), report.Request{Category: c, Location: locationQuery(r), Breakdown: breakdown})
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	return rep, true
}

// GET /metrics/{category}?district=&subcounty=&parish=&village=&breakdown=
func (h handler) metrics(w http.ResponseWriter, r *http.Request) {
	breakdown, _ := strconv.ParseBool(r.URL.Query().Get("breakdown"))
	if rep, ok := h.run(w, r, breakdown); ok {
		writeJSON(w, http.StatusOK, rep)
	}
}

// GET /breakdown/{category}
func (h handler) breakdown(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.run(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":  rep.Category,
		"filter":    rep.Filter,
		"scope":     rep.Scope,
		"breakdown": rep.Breakdown,
	})
}

// GET /schema/{category}?district=
func (h handler) schema(w http.ResponseWriter, r *http.Request) {
	c, err := facility.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		fail(w, r, err)
		return
	}
	s, err := h.Service.Schema(r.Context(), c, r.URL.Query().Get("district"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GET /locations/{code}
func (h handler) locate(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Locate(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// POST /cache/invalidate?category=&district=&trees=
// 无 category 时清空全部记录缓存；带 district 参数时只移除该区
func (h handler) invalidate(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}
	q := r.URL.Query()
	out := map[string]any{"status": "ok"}
	switch cat := q.Get("category"); {
	case cat == "":
		h.Cache.InvalidateAll(r.Context())
		out["scope"] = "all"
	default:
		c, err := facility.ParseCategory(cat)
		if err != nil {
			fail(w, r, err)
			return
		}
		if q.Has("district") {
			h.Cache.Invalidate(r.Context(), c, q.Get("district"))
			out["scope"] = c.String() + ":" + q.Get("district")
		} else {
			out["removed"] = h.Cache.InvalidateCategory(r.Context(), c)
			out["scope"] = c.String()
		}
	}
	if trees, _ := strconv.ParseBool(q.Get("trees")); trees {
		h.Cache.InvalidateTrees()
		out["trees"] = true
	}
	writeJSON(w, http.StatusOK, out)
}
