// 包 facility：设施规范记录与摄取期归一化；把各批次异构列名一次性映射为强类型字段
package facility

import (
	"strings"

	"facility-api/internal/location"
	"facility-api/internal/tabular"
)

// Facility：归一化后的设施记录
// 约束：布尔字段遵循 ParseLenientBool，数值字段遵循 ParseLenientNumber；类别不适用的字段保持零值
type Facility struct {
	Category     Category `json:"category"`
	Name         string   `json:"name,omitempty"`
	Level        string   `json:"level,omitempty"`
	Ownership    string   `json:"ownership,omitempty"`
	District     string   `json:"district,omitempty"`
	Subcounty    string   `json:"subcounty,omitempty"`
	Parish       string   `json:"parish,omitempty"`
	Village      string   `json:"village,omitempty"`
	LocationCode string   `json:"locationCode,omitempty"`

	Electricity bool `json:"electricity,omitempty"`
	Water       bool `json:"water,omitempty"`
	Sanitation  bool `json:"sanitation,omitempty"`

	Learners   float64 `json:"learners,omitempty"`
	Teachers   float64 `json:"teachers,omitempty"`
	Classrooms float64 `json:"classrooms,omitempty"`

	HealthWorkers       float64 `json:"healthWorkers,omitempty"`
	Beds                float64 `json:"beds,omitempty"`
	CatchmentPopulation float64 `json:"catchmentPopulation,omitempty"`
	Maternity           bool    `json:"maternity,omitempty"`
	Laboratory          bool    `json:"laboratory,omitempty"`
	Immunization        bool    `json:"immunization,omitempty"`
	Antenatal           bool    `json:"antenatal,omitempty"`
	Ambulance           bool    `json:"ambulance,omitempty"`
	EssentialMedicines  bool    `json:"essentialMedicines,omitempty"`
	ColdChain           bool    `json:"coldChain,omitempty"`
}

// view：单条记录的归一化列索引
type view map[string]string

func newView(r tabular.Record) view {
	v := make(view, len(r))
	for k, val := range r {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		// 归一化后撞名时保留非空值
		if old, ok := v[nk]; ok && old != "" {
			continue
		}
		v[nk] = val
	}
	return v
}

func (v view) str(a Attr) string {
	for _, k := range aliases[a] {
		if s := strings.TrimSpace(v[k]); s != "" {
			return s
		}
	}
	return ""
}

func (v view) flag(a Attr) bool { return ParseLenientBool(v.str(a)) }
func (v view) num(a Attr) float64 { return ParseLenientNumber(v.str(a)) }

// Normalize：将原始记录映射为规范记录
func Normalize(r tabular.Record, c Category) Facility {
	v := newView(r)
	f := Facility{
		Category:     c,
		Name:         v.str(AttrName),
		Level:        v.str(AttrLevel),
		Ownership:    v.str(AttrOwnership),
		District:     v.str(AttrDistrict),
		Subcounty:    v.str(AttrSubcounty),
		Parish:       v.str(AttrParish),
		Village:      v.str(AttrVillage),
		LocationCode: v.str(AttrLocationCode),
		Electricity:  v.flag(AttrElectricity),
		Water:        v.flag(AttrWater),
		Sanitation:   v.flag(AttrSanitation),
	}
	switch c {
	case Education:
		f.Learners = v.num(AttrLearners)
		f.Teachers = v.num(AttrTeachers)
		f.Classrooms = v.num(AttrClassrooms)
	case Health:
		f.HealthWorkers = v.num(AttrHealthWorkers)
		f.Beds = v.num(AttrBeds)
		f.CatchmentPopulation = v.num(AttrCatchmentPopulation)
		f.Maternity = v.flag(AttrMaternity)
		f.Laboratory = v.flag(AttrLaboratory)
		f.Immunization = v.flag(AttrImmunization)
		f.Antenatal = v.flag(AttrAntenatal)
		f.Ambulance = v.flag(AttrAmbulance)
		f.EssentialMedicines = v.flag(AttrEssentialMedicines)
		f.ColdChain = v.flag(AttrColdChain)
	}
	return f
}

// NormalizeAll：批量归一化
func NormalizeAll(recs []tabular.Record, c Category) []Facility {
	out := make([]Facility, 0, len(recs))
	for _, r := range recs {
		out = append(out, Normalize(r, c))
	}
	return out
}

// FilterByLocation：按编码范围过滤（语义同 location.Filter.Match）；空范围原样返回
func FilterByLocation(fs []Facility, f location.Filter) []Facility {
	if f.IsZero() {
		return fs
	}
	out := make([]Facility, 0, len(fs))
	for _, x := range fs {
		if f.Match(x.LocationCode) {
			out = append(out, x)
		}
	}
	return out
}
