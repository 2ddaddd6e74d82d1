package facility

import "strings"

// Attr：规范属性名
type Attr string

const (
	AttrName         Attr = "name"
	AttrLevel        Attr = "level"
	AttrOwnership    Attr = "ownership"
	AttrDistrict     Attr = "district"
	AttrSubcounty    Attr = "subcounty"
	AttrParish       Attr = "parish"
	AttrVillage      Attr = "village"
	AttrLocationCode Attr = "location_code"
	AttrElectricity  Attr = "electricity"
	AttrWater        Attr = "water"
	AttrSanitation   Attr = "sanitation"

	AttrLearners   Attr = "learners"
	AttrTeachers   Attr = "teachers"
	AttrClassrooms Attr = "classrooms"

	AttrHealthWorkers       Attr = "health_workers"
	AttrBeds                Attr = "beds"
	AttrCatchmentPopulation Attr = "catchment_population"
	AttrMaternity           Attr = "maternity"
	AttrLaboratory          Attr = "laboratory"
	AttrImmunization        Attr = "immunization"
	AttrAntenatal           Attr = "antenatal"
	AttrAmbulance           Attr = "ambulance"
	AttrEssentialMedicines  Attr = "essential_medicines"
	AttrColdChain           Attr = "cold_chain"
)

// 各数据采集批次出现过的列名（已归一化：小写，空格/连字符/点转下划线）
// 约束：顺序即优先级，第一个存在且非空的列胜出
var aliases = map[Attr][]string{
	AttrName:         {"name", "facility_name", "school_name", "health_facility", "health_facility_name", "institution_name"},
	AttrLevel:        {"level", "facility_level", "school_level", "level_of_care", "facility_type", "type"},
	AttrOwnership:    {"ownership", "owner", "ownership_type", "managing_authority", "authority", "founding_body"},
	AttrDistrict:     {"district", "district_name"},
	AttrSubcounty:    {"subcounty", "sub_county", "subcounty_name", "sub_county_name"},
	AttrParish:       {"parish", "parish_name", "ward"},
	AttrVillage:      {"village", "village_name", "cell"},
	AttrLocationCode: {"location_code", "loc_code", "admin_code"},
	AttrElectricity:  {"electricity", "has_electricity", "electricity_available", "power_supply", "power", "grid_connection"},
	AttrWater:        {"water", "has_water", "water_available", "safe_water", "clean_water", "water_source"},
	AttrSanitation:   {"sanitation", "toilets", "has_toilets", "latrines", "has_latrines", "latrine_available"},

	AttrLearners:   {"learners", "total_learners", "enrollment", "enrolment", "total_enrollment", "total_enrolment", "pupils", "number_of_pupils", "students"},
	AttrTeachers:   {"teachers", "total_teachers", "number_of_teachers", "no_of_teachers", "teaching_staff"},
	AttrClassrooms: {"classrooms", "total_classrooms", "number_of_classrooms", "no_of_classrooms"},

	AttrHealthWorkers:       {"health_workers", "total_staff", "staff", "number_of_staff", "health_staff"},
	AttrBeds:                {"beds", "number_of_beds", "total_beds", "no_of_beds", "bed_capacity"},
	AttrCatchmentPopulation: {"catchment_population", "population_served", "catchment", "target_population"},
	AttrMaternity:           {"maternity", "maternity_ward", "has_maternity", "maternity_services", "delivery_services"},
	AttrLaboratory:          {"laboratory", "lab", "has_lab", "has_laboratory", "laboratory_services"},
	AttrImmunization:        {"immunization", "immunisation", "immunization_services", "epi_services", "vaccination"},
	AttrAntenatal:           {"antenatal", "antenatal_care", "anc", "anc_services"},
	AttrAmbulance:           {"ambulance", "has_ambulance", "ambulance_available"},
	AttrEssentialMedicines:  {"essential_medicines", "medicines_available", "tracer_medicines", "medicine_stock", "drug_stock"},
	AttrColdChain:           {"cold_chain", "has_cold_chain", "vaccine_fridge", "fridge"},
}

var commonAttrs = []Attr{
	AttrName, AttrLevel, AttrOwnership, AttrDistrict, AttrSubcounty, AttrParish, AttrVillage,
	AttrLocationCode, AttrElectricity, AttrWater, AttrSanitation,
}

var categoryAttrs = map[Category][]Attr{
	Education: {AttrLearners, AttrTeachers, AttrClassrooms},
	Health: {
		AttrHealthWorkers, AttrBeds, AttrCatchmentPopulation, AttrMaternity, AttrLaboratory,
		AttrImmunization, AttrAntenatal, AttrAmbulance, AttrEssentialMedicines, AttrColdChain,
	},
}

// Attrs：类别适用的规范属性（公共在前）
func Attrs(c Category) []Attr {
	out := append([]Attr{}, commonAttrs...)
	return append(out, categoryAttrs[c]...)
}

// Aliases：规范属性的候选列名（副本）
func Aliases(a Attr) []string { return append([]string{}, aliases[a]...) }

// NormalizeKey：列名归一化（小写，空格/连字符/点/斜杠转下划线，合并重复下划线）
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		switch r {
		case ' ', '-', '.', '/', '_', '\t':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			prevUnderscore = true
		default:
			b.WriteRune(r)
			prevUnderscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
