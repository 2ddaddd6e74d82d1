package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"facility-api/internal/benchmark"
	"facility-api/internal/dataset"
	"facility-api/internal/facility"
	"facility-api/internal/location"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schools = `School Name,Sub County,Enrolment,No. of Teachers,Has Electricity,location_code
Busaana P/S,Busaana,600,15,yes,D01S02P03V01
Namusaala P/S,Busaana,400,,no,D01S02P03V02
Kayunga SS,Kayunga Town Council,900,30,yes,D01S01P01V01
`

const tree = `{"districts":[{"code":"D01","name":"Kayunga","subcounties":[
 {"code":"D01S01","name":"Kayunga Town Council","parishes":[{"code":"D01S01P01","name":"Kayunga Central"}]},
 {"code":"D01S02","name":"Busaana","parishes":[{"code":"D01S02P03","name":"Namusaala","villages":[
   {"code":"D01S02P03V01","name":"Bukasa"},{"code":"D01S02P03V02","name":"Kitimbwa"}]}]}]}]}`

func newService(t *testing.T, withTree bool) *Service {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	write("education/D01.csv", schools)
	if withTree {
		write("locations/D01.json", tree)
	}
	return New(dataset.NewLoader(dataset.Options{Source: dataset.FileSource{Dir: dir}, TreeDir: dir}))
}

func TestRunDistrictWithBreakdown(t *testing.T) {
	s := newService(t, true)
	rep, err := s.Run(context.Background(), Request{
		Category:  facility.Education,
		Location:  location.NameFilter{District: "D01"},
		Breakdown: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Metrics.TotalFacilities)
	require.NotNil(t, rep.Scope)
	assert.Equal(t, "Kayunga", rep.Scope.Name)
	require.Len(t, rep.Breakdown, 2)
	assert.Equal(t, "Busaana", rep.Breakdown[0].Name)

	var electricity *benchmark.Gap
	for i := range rep.Metrics.Gaps {
		if rep.Metrics.Gaps[i].Type == benchmark.Electricity {
			electricity = &rep.Metrics.Gaps[i]
		}
	}
	require.NotNil(t, electricity)
	assert.Equal(t, 66.7, electricity.Current)
}

func TestRunResolvesNames(t *testing.T) {
	s := newService(t, true)
	rep, err := s.Run(context.Background(), Request{
		Category: facility.Education,
		Location: location.NameFilter{District: "D01", Subcounty: "busaana"},
	})
	require.NoError(t, err)
	assert.Equal(t, "D01S02", rep.Filter.Subcounty)
	assert.Equal(t, 2, rep.Metrics.TotalFacilities)
	assert.Nil(t, rep.Breakdown)
	require.NotNil(t, rep.Scope)
	assert.Equal(t, location.LevelSubcounty, rep.Scope.Level)

	_, err = s.Run(context.Background(), Request{
		Category: facility.Education,
		Location: location.NameFilter{District: "D01", Subcounty: "Nazigo"},
	})
	assert.True(t, errors.Is(err, location.ErrLocationNotFound))
}

func TestRunCodesWithoutTree(t *testing.T) {
	s := newService(t, false)
	rep, err := s.Run(context.Background(), Request{
		Category: facility.Education,
		Location: location.NameFilter{Village: "D01S02P03V02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Metrics.TotalFacilities)
	assert.Nil(t, rep.Scope)

	_, err = s.Run(context.Background(), Request{
		Category: facility.Education,
		Location: location.NameFilter{Subcounty: "Busaana"},
	})
	assert.True(t, errors.Is(err, location.ErrLocationNotFound))
}

func TestRunErrors(t *testing.T) {
	s := newService(t, true)
	_, err := s.Run(context.Background(), Request{Category: facility.Category(0)})
	assert.True(t, errors.Is(err, facility.ErrUnknownCategory))

	_, err = s.Run(context.Background(), Request{Category: facility.Health, Location: location.NameFilter{District: "D01"}})
	assert.True(t, errors.Is(err, dataset.ErrSourceNotFound))
}

func TestSchema(t *testing.T) {
	s := newService(t, true)
	sc, err := s.Schema(context.Background(), facility.Education, "D01")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.SampleCount)
	assert.Contains(t, sc.Fields, "Enrolment")
	assert.Equal(t, "No. of Teachers", sc.Resolved["teachers"])
}

func TestLocate(t *testing.T) {
	s := newService(t, true)
	e, err := s.Locate(context.Background(), "D01S02P03V01")
	require.NoError(t, err)
	assert.Equal(t, "Bukasa", e.Name)
	p, ok := e.Ancestor(location.LevelParish)
	require.True(t, ok)
	assert.Equal(t, "Namusaala", p.Name)

	_, err = s.Locate(context.Background(), "D01S02P03V04")
	assert.True(t, errors.Is(err, location.ErrLocationNotFound))
	_, err = s.Locate(context.Background(), "XX99")
	assert.True(t, errors.Is(err, location.ErrLocationNotFound))
}
