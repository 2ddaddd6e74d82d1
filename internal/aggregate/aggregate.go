// 包 aggregate：按类别计算设施指标（计数、百分比、比率）并与基准比较得出差距
//
// 背景：
// - 输入为已归一化、已按位置过滤的 facility.Facility 切片
// - 每次调用都新建 Aggregate，不跨请求复用或增量修改
//
// 约束：
// - 分母为 0 的百分比与比率一律省略（nil），不产生 NaN
// - 百分比与比率统一四舍五入到一位小数
package aggregate

import (
	"math"
	"strings"

	"facility-api/internal/benchmark"
	"facility-api/internal/facility"
)

// UnknownLabel：空标签的归类名
const UnknownLabel = "Unknown"

// Indicator：存在性计数及其占比
type Indicator struct {
	Count      int      `json:"count"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Enrollment：教育类入学与师资汇总
type Enrollment struct {
	TotalLearners       float64  `json:"totalLearners"`
	TotalTeachers       float64  `json:"totalTeachers"`
	TotalClassrooms     float64  `json:"totalClassrooms"`
	PupilTeacherRatio   *float64 `json:"pupilTeacherRatio,omitempty"`
	PupilClassroomRatio *float64 `json:"pupilClassroomRatio,omitempty"`
}

// Capacity：卫生类人力床位与服务人口汇总
type Capacity struct {
	TotalHealthWorkers    float64  `json:"totalHealthWorkers"`
	TotalBeds             float64  `json:"totalBeds"`
	CatchmentPopulation   float64  `json:"catchmentPopulation"`
	PopulationPerFacility *float64 `json:"populationPerFacility,omitempty"`
	HealthWorkersPer1000  *float64 `json:"healthWorkersPer1000,omitempty"`
	BedsPer1000           *float64 `json:"bedsPer1000,omitempty"`
}

// Aggregate：单个类别、单个范围的指标汇总
type Aggregate struct {
	Category        facility.Category    `json:"category"`
	TotalFacilities int                  `json:"totalFacilities"`
	ByLevel         map[string]int       `json:"byLevel"`
	ByOwnership     map[string]int       `json:"byOwnership"`
	Infrastructure  map[string]Indicator `json:"infrastructure"`
	Services        map[string]Indicator `json:"services,omitempty"`
	Supplies        map[string]Indicator `json:"supplies,omitempty"`
	Enrollment      *Enrollment          `json:"enrollment,omitempty"`
	Capacity        *Capacity            `json:"capacity,omitempty"`
	Gaps            []benchmark.Gap      `json:"gaps"`
	Benchmarks      benchmark.Table      `json:"benchmarks"`
}

// Aggregator：单一类别的累加器；每次 Compute 新建一个
type Aggregator interface {
	Add(f facility.Facility)
	Finish(a *Aggregate)
}

// newAggregator：类别 → 累加器的穷举分派
func newAggregator(c facility.Category) (Aggregator, error) {
	switch c {
	case facility.Education:
		return newEducationAggregator(), nil
	case facility.Health:
		return newHealthAggregator(), nil
	}
	return nil, facility.ErrUnknownCategory
}

// Compute：汇总设施指标并检测基准差距
func Compute(fs []facility.Facility, c facility.Category) (*Aggregate, error) {
	bench, err := benchmark.For(c)
	if err != nil {
		return nil, err
	}
	agg, err := newAggregator(c)
	if err != nil {
		return nil, err
	}
	a := &Aggregate{
		Category:        c,
		TotalFacilities: len(fs),
		ByLevel:         map[string]int{},
		ByOwnership:     map[string]int{},
		Gaps:            []benchmark.Gap{},
		Benchmarks:      bench,
	}
	for _, f := range fs {
		a.ByLevel[label(f.Level)]++
		a.ByOwnership[label(f.Ownership)]++
		agg.Add(f)
	}
	agg.Finish(a)
	return a, nil
}

func label(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return UnknownLabel
	}
	return s
}

// round1：四舍五入到一位小数
func round1(x float64) float64 { return math.Round(x*10) / 10 }

// ratio：分母为 0 时返回 nil
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := round1(num / den)
	return &v
}

func percent(count, total int) *float64 {
	return ratio(float64(count)*100, float64(total))
}

func positive(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// presence：按固定顺序记录的布尔存在性计数
type presence struct {
	keys   []string
	counts map[string]int
}

func newPresence(keys ...string) presence {
	return presence{keys: keys, counts: make(map[string]int, len(keys))}
}

func (p presence) mark(key string, ok bool) {
	if ok {
		p.counts[key]++
	}
}

func (p presence) indicators(total int) map[string]Indicator {
	out := make(map[string]Indicator, len(p.keys))
	for _, k := range p.keys {
		out[k] = Indicator{Count: p.counts[k], Percentage: percent(p.counts[k], total)}
	}
	return out
}

// gaps：按 keys 顺序比较存在性百分比；百分比缺省的指标不参与
func (p presence) gaps(a *Aggregate, ind map[string]Indicator) {
	for _, k := range p.keys {
		pct := ind[k].Percentage
		b, ok := a.Benchmarks[k]
		if pct == nil || !ok {
			continue
		}
		if g, short := b.Check(k, *pct); short {
			a.Gaps = append(a.Gaps, g)
		}
	}
}

// checkValue：单个比率的差距检测；比率缺省时跳过
func checkValue(a *Aggregate, metric string, v *float64) {
	b, ok := a.Benchmarks[metric]
	if v == nil || !ok {
		return
	}
	if g, short := b.Check(metric, *v); short {
		a.Gaps = append(a.Gaps, g)
	}
}
