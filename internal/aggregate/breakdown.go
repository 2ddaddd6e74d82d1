package aggregate

import (
	"sort"

	"facility-api/internal/facility"
)

// BreakdownEntry：单个分组（子县）的汇总
type BreakdownEntry struct {
	Name          string     `json:"name"`
	FacilityCount int        `json:"facilityCount"`
	Metrics       *Aggregate `json:"metrics"`
}

// Breakdown：按子县分组并对每组重新汇总
// 约束：类别由调用方显式给出；按设施数降序，数量相同时保持首次出现顺序
func Breakdown(fs []facility.Facility, c facility.Category) ([]BreakdownEntry, error) {
	if !c.Valid() {
		return nil, facility.ErrUnknownCategory
	}
	var order []string
	groups := map[string][]facility.Facility{}
	for _, f := range fs {
		k := label(f.Subcounty)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], f)
	}
	out := make([]BreakdownEntry, 0, len(order))
	for _, k := range order {
		m, err := Compute(groups[k], c)
		if err != nil {
			return nil, err
		}
		out = append(out, BreakdownEntry{Name: k, FacilityCount: len(groups[k]), Metrics: m})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FacilityCount > out[j].FacilityCount })
	return out, nil
}
