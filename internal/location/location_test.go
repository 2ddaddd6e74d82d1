package location

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"facility-api/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeJSON = `{
  "districts": [
    {
      "code": "D01", "name": "Kayunga",
      "subcounties": [
        {"code": "D01S01", "name": "Kayunga Town Council", "parishes": [
          {"code": "D01S01P01", "name": "Kayunga Central", "villages": [
            {"code": "D01S01P01V01", "name": "Kasokwe"}
          ]}
        ]},
        {"code": "D01S02", "name": "Busaana", "parishes": [
          {"code": "D01S02P03", "name": "Namusaala", "villages": [
            {"code": "D01S02P03V01", "name": "Bukasa"},
            {"code": "D01S02P03V02", "name": "Kitimbwa"}
          ]}
        ]}
      ]
    }
  ]
}`

const treeYAML = `
code: D02
name: Mukono
subcounties:
  - code: D02S01
    name: Nama
    parishes:
      - code: D02S01P01
        name: Katente
        villages:
          - code: D02S01P01V01
            name: Kiwanga
`

func mustTree(t *testing.T) *Tree {
	t.Helper()
	tr, err := Decode([]byte(treeJSON), FormatJSON)
	require.NoError(t, err)
	return tr
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"D01":          LevelDistrict,
		"D01S02":       LevelSubcounty,
		"D01S02P03":    LevelParish,
		"D01S02P03V04": LevelVillage,
		"D1S2P3V4":     LevelVillage,
	}
	for code, want := range cases {
		got, ok := ParseLevel(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}
	for _, bad := range []string{"", "XX99", "d01", "D01S", "D01P03", "S02", "D01S02P03V04X"} {
		_, ok := ParseLevel(bad)
		assert.False(t, ok, bad)
	}
}

func TestDistrictCode(t *testing.T) {
	assert.Equal(t, "D01", DistrictCode("D01S02P03V04"))
	assert.Equal(t, "D12", DistrictCode("D12"))
	assert.Equal(t, "", DistrictCode("XX99"))
	assert.Equal(t, "", DistrictCode("Kayunga"))
}

func TestDecodeJSONCounts(t *testing.T) {
	tr := mustTree(t)
	assert.Equal(t, 1, tr.Count(LevelDistrict))
	assert.Equal(t, 2, tr.Count(LevelSubcounty))
	assert.Equal(t, 2, tr.Count(LevelParish))
	assert.Equal(t, 3, tr.Count(LevelVillage))
}

func TestDecodeYAMLSingleDistrict(t *testing.T) {
	tr, err := Decode([]byte(treeYAML), FormatYAML)
	require.NoError(t, err)
	e, ok := tr.Resolve("D02S01P01V01")
	require.True(t, ok)
	assert.Equal(t, "Kiwanga", e.Name)
	require.Len(t, e.Ancestors, 3)
	assert.Equal(t, "Mukono", e.Ancestors[0].Name)
}

func TestDecodeEmptyDocument(t *testing.T) {
	_, err := Decode([]byte(`{"districts": []}`), FormatJSON)
	assert.True(t, errors.Is(err, ErrEmptyTree))
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "locations.yml")
	require.NoError(t, os.WriteFile(p, []byte(treeYAML), 0o644))
	tr, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Count(LevelVillage))
}

func TestResolve(t *testing.T) {
	tr := mustTree(t)

	e, ok := tr.Resolve("D01S02P03")
	require.True(t, ok)
	assert.Equal(t, LevelParish, e.Level)
	assert.Equal(t, "Namusaala", e.Name)
	assert.Equal(t, []Ref{
		{Level: LevelDistrict, Code: "D01", Name: "Kayunga"},
		{Level: LevelSubcounty, Code: "D01S02", Name: "Busaana"},
	}, e.Ancestors)

	sc, ok := e.Ancestor(LevelSubcounty)
	require.True(t, ok)
	assert.Equal(t, "D01S02", sc.Code)

	_, ok = tr.Resolve("D01S02P03V04")
	assert.False(t, ok, "village missing from tree")
	_, ok = tr.Resolve("XX99")
	assert.False(t, ok, "invalid pattern")
}

func TestResolveRejectsLevelMismatch(t *testing.T) {
	// 子县位置上放置了区级结构的编码
	tr, err := Decode([]byte(`{"districts":[{"code":"D01","name":"A","subcounties":[{"code":"D09","name":"Odd"}]}]}`), FormatJSON)
	require.NoError(t, err)
	_, ok := tr.Resolve("D09")
	assert.False(t, ok)
}

func TestFindByName(t *testing.T) {
	tr := mustTree(t)
	e, ok := tr.FindByName(LevelSubcounty, "  kayunga   TOWN council ", "")
	require.True(t, ok)
	assert.Equal(t, "D01S01", e.Code)

	_, ok = tr.FindByName(LevelVillage, "Bukasa", "D01S01")
	assert.False(t, ok, "Bukasa is not under the town council")

	e, ok = tr.FindByName(LevelVillage, "Bukasa", "D01S02")
	require.True(t, ok)
	assert.Equal(t, "D01S02P03V01", e.Code)
}

func TestFilterScopePriority(t *testing.T) {
	lvl, code := Filter{District: "D01", Subcounty: "D01S02", Parish: "D01S02P03"}.Scope()
	assert.Equal(t, LevelParish, lvl)
	assert.Equal(t, "D01S02P03", code)

	assert.True(t, Filter{}.IsZero())
	assert.True(t, Filter{Village: "  "}.IsZero())
}

func TestFilterRecordsPrefix(t *testing.T) {
	recs := []tabular.Record{
		{"location_code": "D01"},
		{"location_code": "D01S02"},
		{"location_code": "D01S02P03"},
		{"location_code": "D01S02P03V04"},
		{"location_code": "D01S03P01"},
		{"location_code": ""},
		{"name": "no code"},
	}
	got := FilterRecords(recs, Filter{District: "D01", Subcounty: "D01S02"})
	var codes []string
	for _, r := range got {
		codes = append(codes, r.Get(CodeField))
	}
	assert.Equal(t, []string{"D01S02", "D01S02P03", "D01S02P03V04"}, codes)

	assert.Len(t, FilterRecords(recs, Filter{}), len(recs))
	assert.Empty(t, FilterRecords(recs, Filter{Subcounty: "d01s02"}), "case-sensitive")
}

func TestResolveNames(t *testing.T) {
	tr := mustTree(t)
	f, err := tr.ResolveNames(NameFilter{District: "Kayunga", Subcounty: "Busaana", Village: "Kitimbwa"})
	require.NoError(t, err)
	assert.Equal(t, Filter{District: "D01", Subcounty: "D01S02", Village: "D01S02P03V02"}, f)

	_, err = tr.ResolveNames(NameFilter{Subcounty: "Nowhere"})
	assert.True(t, errors.Is(err, ErrLocationNotFound))
}

func TestResolveInputMixesCodesAndNames(t *testing.T) {
	tr := mustTree(t)
	f, err := tr.ResolveInput(NameFilter{District: "D01", Subcounty: "busaana"})
	require.NoError(t, err)
	assert.Equal(t, Filter{District: "D01", Subcounty: "D01S02"}, f)

	f, err = (*Tree)(nil).ResolveInput(NameFilter{Parish: "D01S02P03"})
	require.NoError(t, err)
	assert.Equal(t, Filter{Parish: "D01S02P03"}, f)

	_, err = (*Tree)(nil).ResolveInput(NameFilter{Parish: "Namusaala"})
	assert.True(t, errors.Is(err, ErrLocationNotFound))
}

func TestLevelText(t *testing.T) {
	b, err := LevelParish.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "parish", string(b))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("Village")))
	assert.Equal(t, LevelVillage, l)
	assert.Error(t, l.UnmarshalText([]byte("county")))
}
