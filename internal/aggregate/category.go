package aggregate

import (
	"facility-api/internal/benchmark"
	"facility-api/internal/facility"
)

type educationAggregator struct {
	infra      presence
	learners   float64
	teachers   float64
	classrooms float64
}

func newEducationAggregator() *educationAggregator {
	return &educationAggregator{infra: newPresence(benchmark.Electricity, benchmark.Water, benchmark.Sanitation)}
}

func (e *educationAggregator) Add(f facility.Facility) {
	e.infra.mark(benchmark.Electricity, f.Electricity)
	e.infra.mark(benchmark.Water, f.Water)
	e.infra.mark(benchmark.Sanitation, f.Sanitation)
	e.learners += positive(f.Learners)
	e.teachers += positive(f.Teachers)
	e.classrooms += positive(f.Classrooms)
}

func (e *educationAggregator) Finish(a *Aggregate) {
	a.Infrastructure = e.infra.indicators(a.TotalFacilities)
	a.Enrollment = &Enrollment{
		TotalLearners:       e.learners,
		TotalTeachers:       e.teachers,
		TotalClassrooms:     e.classrooms,
		PupilTeacherRatio:   ratio(e.learners, e.teachers),
		PupilClassroomRatio: ratio(e.learners, e.classrooms),
	}
	e.infra.gaps(a, a.Infrastructure)
	checkValue(a, benchmark.PupilTeacherRatio, a.Enrollment.PupilTeacherRatio)
	checkValue(a, benchmark.PupilClassroomRatio, a.Enrollment.PupilClassroomRatio)
}

type healthAggregator struct {
	infra      presence
	services   presence
	supplies   presence
	workers    float64
	beds       float64
	catchment  float64
	catchments int
}

func newHealthAggregator() *healthAggregator {
	return &healthAggregator{
		infra:    newPresence(benchmark.Electricity, benchmark.Water, benchmark.Sanitation),
		services: newPresence(benchmark.Maternity, benchmark.Laboratory, benchmark.Immunization, benchmark.Antenatal),
		supplies: newPresence(benchmark.Ambulance, benchmark.EssentialMedicines, benchmark.ColdChain),
	}
}

func (h *healthAggregator) Add(f facility.Facility) {
	h.infra.mark(benchmark.Electricity, f.Electricity)
	h.infra.mark(benchmark.Water, f.Water)
	h.infra.mark(benchmark.Sanitation, f.Sanitation)
	h.services.mark(benchmark.Maternity, f.Maternity)
	h.services.mark(benchmark.Laboratory, f.Laboratory)
	h.services.mark(benchmark.Immunization, f.Immunization)
	h.services.mark(benchmark.Antenatal, f.Antenatal)
	h.supplies.mark(benchmark.Ambulance, f.Ambulance)
	h.supplies.mark(benchmark.EssentialMedicines, f.EssentialMedicines)
	h.supplies.mark(benchmark.ColdChain, f.ColdChain)
	h.workers += positive(f.HealthWorkers)
	h.beds += positive(f.Beds)
	if f.CatchmentPopulation > 0 {
		h.catchment += f.CatchmentPopulation
		h.catchments++
	}
}

func (h *healthAggregator) Finish(a *Aggregate) {
	a.Infrastructure = h.infra.indicators(a.TotalFacilities)
	a.Services = h.services.indicators(a.TotalFacilities)
	a.Supplies = h.supplies.indicators(a.TotalFacilities)
	a.Capacity = &Capacity{
		TotalHealthWorkers:    h.workers,
		TotalBeds:             h.beds,
		CatchmentPopulation:   h.catchment,
		PopulationPerFacility: ratio(h.catchment, float64(h.catchments)),
		HealthWorkersPer1000:  ratio(h.workers*1000, h.catchment),
		BedsPer1000:           ratio(h.beds*1000, h.catchment),
	}
	h.infra.gaps(a, a.Infrastructure)
	h.services.gaps(a, a.Services)
	h.supplies.gaps(a, a.Supplies)
	checkValue(a, benchmark.PopulationPerFacility, a.Capacity.PopulationPerFacility)
	checkValue(a, benchmark.HealthWorkersPer1000, a.Capacity.HealthWorkersPer1000)
	checkValue(a, benchmark.BedsPer1000, a.Capacity.BedsPer1000)
}
