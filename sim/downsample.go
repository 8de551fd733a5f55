package sim

import (
	"fmt"
	"sort"
)

// SampleSet is an ordered (ascending ID) set of sampled individuals together
// with the strategy that produced it. Read-only after creation; the same
// SampleSet feeds both the epidemiological and the phylogenetic view so the
// two stay consistent.
type SampleSet struct {
	IDs      []int
	Strategy SamplingStrategy
	Param    float64 // probability for proportional, count for fixed-count
	Seed     int64

	members map[int]bool
}

// Contains reports whether the individual is in the sample.
func (s *SampleSet) Contains(id int) bool {
	return s.members[id]
}

// Size returns the number of sampled individuals.
func (s *SampleSet) Size() int {
	return len(s.IDs)
}

// Downsample selects a subset of the outbreak's individuals under the
// configured strategy and returns the SampleSet plus the line list
// restricted to it (entries marked Sampled). Draws come from the isolated
// sampling RNG subsystem, so a seed reproduces the set exactly and sampling
// never perturbs the epidemic stream.
func Downsample(reg *Registry, cfg SamplingConfig) (*SampleSet, []LineListEntry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if reg == nil || reg.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no individuals to sample (was transmission tracking enabled?)", ErrInvalidParameter)
	}
	if cfg.Strategy == StrategyFixedCount && cfg.Count > reg.Len() {
		return nil, nil, fmt.Errorf("%w: requested %d of %d infected",
			ErrSampleSizeExceedsPopulation, cfg.Count, reg.Len())
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed)).ForSubsystem(SubsystemSampling)

	var ids []int
	var param float64
	switch cfg.Strategy {
	case StrategyProportional:
		param = cfg.Probability
		for _, ind := range reg.All() {
			if rng.Float64() < cfg.Probability {
				ids = append(ids, ind.ID)
			}
		}
	case StrategyFixedCount:
		param = float64(cfg.Count)
		// Partial Fisher-Yates: the first Count positions are a uniform
		// draw without replacement.
		perm := make([]int, reg.Len())
		for i := range perm {
			perm[i] = i
		}
		for i := 0; i < cfg.Count; i++ {
			j := i + rng.IntN(len(perm)-i)
			perm[i], perm[j] = perm[j], perm[i]
		}
		ids = append(ids, perm[:cfg.Count]...)
		sort.Ints(ids)
	}

	set := &SampleSet{
		IDs:      ids,
		Strategy: cfg.Strategy,
		Param:    param,
		Seed:     cfg.Seed,
		members:  make(map[int]bool, len(ids)),
	}
	for _, id := range ids {
		set.members[id] = true
	}

	reduced := make([]LineListEntry, 0, len(ids))
	for _, id := range ids {
		ind := reg.Get(id)
		reduced = append(reduced, LineListEntry{
			ID:            ind.ID,
			InfectorID:    ind.InfectorID,
			InfectionTime: ind.InfectionTime,
			RemovalTime:   ind.RemovalTime,
			Sampled:       true,
		})
	}
	return set, reduced, nil
}

// NewSampleSet builds a SampleSet from explicit IDs, for callers that
// already know which individuals were observed (e.g. tests or externally
// ascertained cases). IDs are deduplicated and sorted.
func NewSampleSet(ids []int) *SampleSet {
	members := make(map[int]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	uniq := make([]int, 0, len(members))
	for id := range members {
		uniq = append(uniq, id)
	}
	sort.Ints(uniq)
	return &SampleSet{IDs: uniq, members: members}
}
