package facility

import (
	"errors"
	"testing"

	"facility-api/internal/location"
	"facility-api/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLenientBool(t *testing.T) {
	for _, s := range []string{"yes", "Y", " TRUE ", "1", "yEs"} {
		assert.True(t, ParseLenientBool(s), s)
	}
	for _, s := range []string{"", "no", "0", "false", "available", "yes please", "2"} {
		assert.False(t, ParseLenientBool(s), s)
	}
}

func TestParseLenientNumber(t *testing.T) {
	cases := map[string]float64{
		"":          0,
		"12":        12,
		" 1,250 ":   1250,
		"1,234,567": 1234567,
		"3.5":       3.5,
		"n/a":       0,
		"NaN":       0,
		"Inf":       0,
		"-4":        -4,
		"1 200":     1200,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLenientNumber(in), in)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Health ")
	require.NoError(t, err)
	assert.Equal(t, Health, c)

	_, err = ParseCategory("agriculture")
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	var cc Category
	require.NoError(t, cc.UnmarshalText([]byte("education")))
	assert.Equal(t, Education, cc)
	_, err = Category(0).MarshalText()
	assert.Error(t, err)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "sub_county", NormalizeKey(" Sub County "))
	assert.Equal(t, "no_of_teachers", NormalizeKey("No. of Teachers"))
	assert.Equal(t, "has_electricity", NormalizeKey("Has-Electricity"))
	assert.Equal(t, "total_learners", NormalizeKey("total__learners_"))
}

func TestNormalizeEducationAlternates(t *testing.T) {
	older := tabular.Record{
		"School Name":     "Busaana P/S",
		"Sub County":      "Busaana",
		"Enrolment":       "1,200",
		"No. of Teachers": "30",
		"Has Electricity": "Yes",
		"location_code":   "D01S02P03",
	}
	newer := tabular.Record{
		"name":               "Kangulumira SS",
		"subcounty":          "",
		"sub_county":         "Kangulumira",
		"total_learners":     "800",
		"teachers":           "",
		"number_of_teachers": "20",
		"electricity":        "no",
		"classrooms":         "abc",
	}
	a := Normalize(older, Education)
	assert.Equal(t, "Busaana P/S", a.Name)
	assert.Equal(t, "Busaana", a.Subcounty)
	assert.Equal(t, 1200.0, a.Learners)
	assert.Equal(t, 30.0, a.Teachers)
	assert.True(t, a.Electricity)
	assert.Equal(t, "D01S02P03", a.LocationCode)

	b := Normalize(newer, Education)
	assert.Equal(t, "Kangulumira", b.Subcounty, "empty primary alias falls through")
	assert.Equal(t, 20.0, b.Teachers)
	assert.Equal(t, 0.0, b.Classrooms)
	assert.False(t, b.Electricity)
	assert.Equal(t, Education, b.Category)
}

func TestNormalizeHealthIgnoresEducationFields(t *testing.T) {
	r := tabular.Record{
		"facility_name":     "Kayunga HC IV",
		"level_of_care":     "HC IV",
		"has_ambulance":     "y",
		"maternity_ward":    "1",
		"population_served": "25,000",
		"learners":          "100",
	}
	f := Normalize(r, Health)
	assert.Equal(t, "HC IV", f.Level)
	assert.True(t, f.Ambulance)
	assert.True(t, f.Maternity)
	assert.Equal(t, 25000.0, f.CatchmentPopulation)
	assert.Zero(t, f.Learners)
}

func TestFilterByLocation(t *testing.T) {
	fs := []Facility{
		{Name: "a", LocationCode: "D01"},
		{Name: "b", LocationCode: "D01S02"},
		{Name: "c", LocationCode: "D01S02P03"},
		{Name: "d", LocationCode: "D01S02P03V04"},
		{Name: "e", LocationCode: "D01S03"},
	}
	got := FilterByLocation(fs, location.Filter{Subcounty: "D01S02"})
	var names []string
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"b", "c", "d"}, names)
	assert.Len(t, FilterByLocation(fs, location.Filter{}), 5)
}

func TestDescribeSchema(t *testing.T) {
	samples := []tabular.Record{
		{"School Name": "A", "Enrolment": "10", "location_code": "D01"},
		{"School Name": "B", "Teachers": "2", "location_code": "D01"},
	}
	s, err := DescribeSchema(Education, samples)
	require.NoError(t, err)
	assert.Equal(t, Education, s.Category)
	assert.Equal(t, []string{"Enrolment", "School Name", "Teachers", "location_code"}, s.Fields)
	assert.Equal(t, 2, s.SampleCount)
	assert.NotEmpty(t, s.Description)
	assert.Equal(t, "School Name", s.Resolved["name"])
	assert.Equal(t, "Enrolment", s.Resolved["learners"])
	assert.Equal(t, "Teachers", s.Resolved["teachers"])
	_, ok := s.Resolved["classrooms"]
	assert.False(t, ok)

	_, err = DescribeSchema(Category(9), samples)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestNormalizeIgnoresFacilityIDCodeColumn(t *testing.T) {
	r := tabular.Record{"School Name": "Busaana P/S", "Code": "EMIS-00417", "Sub County": "Busaana"}
	f := Normalize(r, Education)
	assert.Empty(t, f.LocationCode)
	assert.Empty(t, FilterByLocation([]Facility{f}, location.Filter{District: "D01"}))

	r["Admin Code"] = "D01S02"
	assert.Equal(t, "D01S02", Normalize(r, Education).LocationCode)
	assert.NotContains(t, ResolveColumns([]string{"Code"}, Education), string(AttrLocationCode))
}
