// 包 report：一次查询的编排（加载 → 位置解析 → 过滤 → 汇总 → 可选分组）
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facility-api/internal/aggregate"
	"facility-api/internal/dataset"
	"facility-api/internal/facility"
	"facility-api/internal/location"
	"facility-api/internal/logger"
	"facility-api/internal/metrics"
)

// Loader：报告所需的数据访问能力
type Loader interface {
	Load(ctx context.Context, c facility.Category, district string) (*dataset.Dataset, error)
	Tree(ctx context.Context, district string) (*location.Tree, error)
}

// Request：查询参数；Location 各字段可为编码或名称
type Request struct {
	Category  facility.Category
	Location  location.NameFilter
	Breakdown bool
}

// Report：查询结果
type Report struct {
	Category  facility.Category          `json:"category"`
	Filter    location.Filter            `json:"filter"`
	Scope     *location.Entity           `json:"scope,omitempty"`
	Metrics   *aggregate.Aggregate       `json:"metrics"`
	Breakdown []aggregate.BreakdownEntry `json:"breakdown,omitempty"`
	Warnings  int                        `json:"sourceWarnings"`
}

// Service：报告服务，可在多个请求间并发使用
type Service struct {
	loader Loader
}

func New(l Loader) *Service { return &Service{loader: l} }

// districtHint：从输入中取可直接确定的区编码
func districtHint(in location.NameFilter) string {
	for _, v := range []string{in.District, in.Subcounty, in.Parish, in.Village} {
		if d := location.DistrictCode(strings.TrimSpace(v)); d != "" {
			return d
		}
	}
	return ""
}

// tree：层级树缺失时返回 nil 且不报错；名称解析会在需要时失败
func (s *Service) tree(ctx context.Context, district string) (*location.Tree, error) {
	t, err := s.loader.Tree(ctx, district)
	if errors.Is(err, dataset.ErrTreeNotFound) {
		logger.L().Debug("location_tree_missing", "district", district)
		return nil, nil
	}
	return t, err
}

// ResolveFilter：外部输入 → 编码范围，同时返回所用层级树（可能为 nil）
func (s *Service) ResolveFilter(ctx context.Context, in location.NameFilter) (location.Filter, *location.Tree, error) {
	t, err := s.tree(ctx, districtHint(in))
	if err != nil {
		return location.Filter{}, nil, err
	}
	f, err := t.ResolveInput(in)
	if err != nil {
		return location.Filter{}, t, err
	}
	return f, t, nil
}

// loadDistrict：数据按区分片；范围内无区信息时加载整类别数据
func loadDistrict(f location.Filter) string {
	if f.District != "" {
		return f.District
	}
	_, code := f.Scope()
	return location.DistrictCode(code)
}

// Run：执行一次查询
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if !req.Category.Valid() {
		return nil, facility.ErrUnknownCategory
	}
	f, t, err := s.ResolveFilter(ctx, req.Location)
	if err != nil {
		return nil, err
	}
	ds, err := s.loader.Load(ctx, req.Category, loadDistrict(f))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fs := facility.FilterByLocation(ds.Facilities, f)
	agg, err := aggregate.Compute(fs, req.Category)
	if err != nil {
		return nil, err
	}
	rep := &Report{Category: req.Category, Filter: f, Metrics: agg, Warnings: len(ds.Warnings)}
	if req.Breakdown {
		if rep.Breakdown, err = aggregate.Breakdown(fs, req.Category); err != nil {
			return nil, err
		}
	}
	elapsed := time.Since(start)
	metrics.AggregateDurationMs.WithLabelValues(req.Category.String()).Observe(float64(elapsed.Microseconds()) / 1000)
	for _, g := range agg.Gaps {
		metrics.GapsTotal.WithLabelValues(req.Category.String(), g.Severity.String()).Inc()
	}

	if _, code := f.Scope(); code != "" && t != nil {
		if e, ok := t.Resolve(code); ok {
			rep.Scope = &e
		}
	}
	logger.L().Debug("report_done", "category", req.Category.String(), "scope", scopeCode(f),
		"facilities", agg.TotalFacilities, "gaps", len(agg.Gaps), "breakdown", len(rep.Breakdown),
		"duration_us", elapsed.Microseconds())
	return rep, nil
}

func scopeCode(f location.Filter) string {
	_, code := f.Scope()
	return code
}

// Schema：描述某类别（可选按区）数据的字段
func (s *Service) Schema(ctx context.Context, c facility.Category, district string) (facility.Schema, error) {
	if !c.Valid() {
		return facility.Schema{}, facility.ErrUnknownCategory
	}
	ds, err := s.loader.Load(ctx, c, district)
	if err != nil {
		return facility.Schema{}, err
	}
	return facility.DescribeSchema(c, ds.Samples)
}

// Locate：解析层级编码
func (s *Service) Locate(ctx context.Context, code string) (location.Entity, error) {
	code = strings.TrimSpace(code)
	if !location.IsCode(code) {
		return location.Entity{}, fmt.Errorf("code %q: %w", code, location.ErrLocationNotFound)
	}
	t, err := s.tree(ctx, location.DistrictCode(code))
	if err != nil {
		return location.Entity{}, err
	}
	e, ok := t.Resolve(code)
	if !ok {
		return location.Entity{}, fmt.Errorf("code %q: %w", code, location.ErrLocationNotFound)
	}
	return e, nil
}
