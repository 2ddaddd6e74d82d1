package facility

import (
	"sort"

	"facility-api/internal/tabular"
)

// Schema：样本数据的结构描述，供下游提示词构建方了解可用字段
type Schema struct {
	Category    Category          `json:"category"`
	Fields      []string          `json:"fields"`
	SampleCount int               `json:"sampleCount"`
	Description string            `json:"description"`
	Resolved    map[string]string `json:"resolved"`
}

var descriptions = map[Category]string{
	Health:    "Health facility records: level of care, ownership, infrastructure (electricity, water, sanitation), services (maternity, laboratory, immunization, antenatal care), supplies (ambulance, essential medicines, cold chain) and capacity (health workers, beds, catchment population).",
	Education: "School records: level, ownership, infrastructure (electricity, water, sanitation) and enrollment (learners, teachers, classrooms).",
}

// DescribeSchema：描述样本记录的字段集合
// Fields 为样本中出现过的全部列名（排序去重）；Resolved 为规范属性 → 实际命中的列名
func DescribeSchema(c Category, samples []tabular.Record) (Schema, error) {
	if !c.Valid() {
		return Schema{}, ErrUnknownCategory
	}
	seen := map[string]bool{}
	fields := []string{}
	for _, r := range samples {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return Schema{
		Category:    c,
		Fields:      fields,
		SampleCount: len(samples),
		Description: descriptions[c],
		Resolved:    ResolveColumns(fields, c),
	}, nil
}

// ResolveColumns：按别名优先级判断每个规范属性能由哪一列提供
func ResolveColumns(header []string, c Category) map[string]string {
	byKey := make(map[string]string, len(header))
	for _, h := range header {
		nk := NormalizeKey(h)
		if _, ok := byKey[nk]; !ok {
			byKey[nk] = h
		}
	}
	out := map[string]string{}
	for _, a := range Attrs(c) {
		for _, alias := range aliases[a] {
			if col, ok := byKey[alias]; ok {
				out[string(a)] = col
				break
			}
		}
	}
	return out
}
