// 包 benchmark：按类别划分的静态基准表与差距严重度判定
package benchmark

import (
	"fmt"
	"strings"

	"facility-api/internal/facility"
)

// Direction：指标“更优”方向
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower"
	}
	return "higher"
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "higher":
		*d = HigherIsBetter
	case "lower":
		*d = LowerIsBetter
	default:
		return fmt.Errorf("unknown benchmark direction %q", b)
	}
	return nil
}

// Benchmark：单个参考值
type Benchmark struct {
	Value     float64   `json:"value"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
}

// Meets：当前值是否达到参考值
func (b Benchmark) Meets(current float64) bool {
	if b.Direction == LowerIsBetter {
		return current <= b.Value
	}
	return current >= b.Value
}

// Table：指标名 → 参考值
type Table map[string]Benchmark

// 指标名（同时用作 Gap.Type）
const (
	Electricity           = "electricity"
	Water                 = "water"
	Sanitation            = "sanitation"
	PupilTeacherRatio     = "pupil_teacher_ratio"
	PupilClassroomRatio   = "pupil_classroom_ratio"
	Maternity             = "maternity"
	Laboratory            = "laboratory"
	Immunization          = "immunization"
	Antenatal             = "antenatal"
	Ambulance             = "ambulance"
	EssentialMedicines    = "essential_medicines"
	ColdChain             = "cold_chain"
	PopulationPerFacility = "population_per_facility"
	HealthWorkersPer1000  = "health_workers_per_1000"
	BedsPer1000           = "beds_per_1000"
)

var education = Table{
	Electricity:         {Value: 100, Direction: HigherIsBetter, Label: "Target electricity coverage (%)"},
	Water:               {Value: 100, Direction: HigherIsBetter, Label: "Target safe water coverage (%)"},
	Sanitation:          {Value: 100, Direction: HigherIsBetter, Label: "Target sanitation coverage (%)"},
	PupilTeacherRatio:   {Value: 40, Direction: LowerIsBetter, Label: "National pupil-teacher ratio standard"},
	PupilClassroomRatio: {Value: 55, Direction: LowerIsBetter, Label: "National pupil-classroom ratio standard"},
}

var health = Table{
	Electricity:           {Value: 100, Direction: HigherIsBetter, Label: "Target electricity coverage (%)"},
	Water:                 {Value: 100, Direction: HigherIsBetter, Label: "Target safe water coverage (%)"},
	Sanitation:            {Value: 100, Direction: HigherIsBetter, Label: "Target sanitation coverage (%)"},
	Maternity:             {Value: 100, Direction: HigherIsBetter, Label: "Facilities offering maternity services (%)"},
	Laboratory:            {Value: 80, Direction: HigherIsBetter, Label: "Facilities with laboratory services (%)"},
	Immunization:          {Value: 100, Direction: HigherIsBetter, Label: "Facilities offering immunization (%)"},
	Antenatal:             {Value: 100, Direction: HigherIsBetter, Label: "Facilities offering antenatal care (%)"},
	Ambulance:             {Value: 50, Direction: HigherIsBetter, Label: "Facilities with ambulance access (%)"},
	EssentialMedicines:    {Value: 95, Direction: HigherIsBetter, Label: "Essential medicines availability (%)"},
	ColdChain:             {Value: 90, Direction: HigherIsBetter, Label: "Facilities with functional cold chain (%)"},
	PopulationPerFacility: {Value: 10000, Direction: LowerIsBetter, Label: "WHO population per health facility"},
	HealthWorkersPer1000:  {Value: 4.45, Direction: HigherIsBetter, Label: "WHO health workers per 1,000 population"},
	BedsPer1000:           {Value: 1.0, Direction: HigherIsBetter, Label: "Hospital beds per 1,000 population"},
}

// For：返回类别基准表的副本
func For(c facility.Category) (Table, error) {
	var src Table
	switch c {
	case facility.Health:
		src = health
	case facility.Education:
		src = education
	default:
		return nil, facility.ErrUnknownCategory
	}
	out := make(Table, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}
