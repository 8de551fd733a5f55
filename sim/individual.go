package sim

// NoInfector marks the index case, which has no incoming transmission edge.
const NoInfector = -1

// Individual is one infected person's record: who infected them, when they
// were infected, and when they were removed. Created by the simulator when
// the infection happens; immutable once removed.
type Individual struct {
	ID            int
	InfectorID    int // NoInfector for index cases
	InfectionTime float64
	RemovalTime   float64 // activeRemovalTime until the individual recovers
	Sampled       bool
}

// activeRemovalTime is the RemovalTime placeholder for individuals still
// infected. The simulator finalizes it to the end-of-run time for anyone
// alive when the step budget runs out, so completed registries never carry it.
const activeRemovalTime = -1

// Registry holds every individual infected during one outbreak realization,
// indexed by ID (IDs are dense, assigned in infection order). Owned by the
// Simulator during the run, read-only afterward.
type Registry struct {
	individuals []Individual
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a newly infected individual and returns its assigned ID.
func (r *Registry) Add(infectorID int, infectionTime float64) int {
	id := len(r.individuals)
	r.individuals = append(r.individuals, Individual{
		ID:            id,
		InfectorID:    infectorID,
		InfectionTime: infectionTime,
		RemovalTime:   activeRemovalTime,
	})
	return id
}

// Len returns the number of individuals ever infected.
func (r *Registry) Len() int {
	return len(r.individuals)
}

// Get returns the individual with the given ID.
func (r *Registry) Get(id int) Individual {
	return r.individuals[id]
}

// All returns the underlying individual slice, in ID order.
// Callers must not mutate it.
func (r *Registry) All() []Individual {
	return r.individuals
}

// setRemoved records the removal time for an individual.
func (r *Registry) setRemoved(id int, t float64) {
	r.individuals[id].RemovalTime = t
}

// finalize assigns the end-of-run time as removal time to anyone still
// infected when the run stopped, so downstream tree builders always see a
// complete lifespan.
func (r *Registry) finalize(endTime float64) {
	for i := range r.individuals {
		if r.individuals[i].RemovalTime == activeRemovalTime {
			r.individuals[i].RemovalTime = endTime
		}
	}
}

// LineListEntry is one row of the per-individual event-time export consumed
// by the downstream inference pipeline.
type LineListEntry struct {
	ID            int
	InfectorID    int
	InfectionTime float64
	RemovalTime   float64
	Sampled       bool
}

// LineList flattens the registry into line-list rows in ID order.
func (r *Registry) LineList() []LineListEntry {
	entries := make([]LineListEntry, 0, len(r.individuals))
	for _, ind := range r.individuals {
		entries = append(entries, LineListEntry{
			ID:            ind.ID,
			InfectorID:    ind.InfectorID,
			InfectionTime: ind.InfectionTime,
			RemovalTime:   ind.RemovalTime,
			Sampled:       ind.Sampled,
		})
	}
	return entries
}

// InfectionTimes extracts the infection times from a line list, in order.
func InfectionTimes(entries []LineListEntry) []float64 {
	times := make([]float64, len(entries))
	for i, e := range entries {
		times[i] = e.InfectionTime
	}
	return times
}

// RemovalTimes extracts the removal times from a line list, in order.
func RemovalTimes(entries []LineListEntry) []float64 {
	times := make([]float64, len(entries))
	for i, e := range entries {
		times[i] = e.RemovalTime
	}
	return times
}
