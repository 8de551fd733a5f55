// sim/epidemic.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TerminationReason records how a realization ended.
type TerminationReason string

const (
	// TerminationExtinction: the infected compartment emptied with
	// susceptibles remaining.
	TerminationExtinction TerminationReason = "extinction"
	// TerminationSaturation: the infected compartment emptied after the
	// epidemic ran through the entire susceptible pool.
	TerminationSaturation TerminationReason = "saturation"
	// TerminationMaxSteps: the step budget ran out with infections ongoing.
	TerminationMaxSteps TerminationReason = "max-steps"
	// TerminationAttemptsExhausted: every retry produced an undersized
	// epidemic. Paired with ErrInsufficientEpidemicSize.
	TerminationAttemptsExhausted TerminationReason = "max-attempts"
)

// StepRecord is the SIR state at the end of one step, plus the number of
// new infections that occurred during it. The Infected column doubles as
// the prevalence series.
type StepRecord struct {
	Step        int
	Time        float64
	Susceptible int
	Infected    int
	Removed     int
	Incidence   int
}

// OutbreakState is the per-step trajectory and summary of one realization.
// Mutated only by the Simulator during the run; read-only afterward.
type OutbreakState struct {
	Steps         []StepRecord
	TotalInfected int
	Attempts      int
	Reason        TerminationReason
	Saturated     bool
	FinalTime     float64
}

// Simulator runs stochastic SIR outbreak realizations under the per-step
// aggregate formulation: recoveries are binomial in the infected count, and
// the offspring of this step's recoveries are a single negative-binomial
// draw with mean recoveries*R_t and dispersion recoveries*k.
//
// One Simulator owns one RNG partition and produces one accepted
// realization; it is not safe for concurrent use.
type Simulator struct {
	Config EpidemicConfig

	// State and Registry hold the accepted realization after Run returns
	// nil. Registry is nil unless TrackTransmissions is set.
	State    *OutbreakState
	Registry *Registry

	rng      *PartitionedRNG
	variates *Variates
}

// NewSimulator validates the configuration and prepares a simulator.
// Invalid parameters surface here, before any simulation work.
func NewSimulator(cfg EpidemicConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	return &Simulator{
		Config:   cfg,
		rng:      rng,
		variates: NewVariates(rng.SourceFor(SubsystemEpidemic)),
	}, nil
}

// Run produces one outbreak realization, retrying undersized epidemics up
// to MaxAttempts with fresh draws from the same seeded stream. On success
// the accepted trajectory is in State (and Registry when tracking).
func (sim *Simulator) Run() error {
	for attempt := 1; attempt <= sim.Config.MaxAttempts; attempt++ {
		state, registry := sim.runOnce()
		state.Attempts = attempt

		burnedOut := state.Reason == TerminationExtinction || state.Reason == TerminationSaturation
		if burnedOut && state.TotalInfected < sim.Config.MinEpidemicSize {
			logrus.Debugf("attempt %d burned out at size %d (< %d), retrying",
				attempt, state.TotalInfected, sim.Config.MinEpidemicSize)
			continue
		}

		sim.State = state
		sim.Registry = registry
		logrus.Infof("outbreak accepted on attempt %d: %d infected, ended by %s at t=%.2f",
			attempt, state.TotalInfected, state.Reason, state.FinalTime)
		return nil
	}
	return fmt.Errorf("%w after %d attempts (minimum size %d)",
		ErrInsufficientEpidemicSize, sim.Config.MaxAttempts, sim.Config.MinEpidemicSize)
}

// runOnce advances a single realization from the initial state to burnout
// or the step budget.
func (sim *Simulator) runOnce() (*OutbreakState, *Registry) {
	cfg := &sim.Config
	rng := sim.rng.ForSubsystem(SubsystemEpidemic)

	susceptible := cfg.InitialSusceptibles
	infected := cfg.PopulationSize - cfg.InitialSusceptibles
	removed := 0
	gammaDt := cfg.Gamma() * cfg.StepSize

	var registry *Registry
	// pool holds the IDs of currently-infected individuals, swap-removed on
	// recovery so uniform selection stays O(1).
	var pool []int
	if cfg.TrackTransmissions {
		registry = NewRegistry()
		for i := 0; i < infected; i++ {
			pool = append(pool, registry.Add(NoInfector, 0))
		}
	}

	state := &OutbreakState{
		Steps: []StepRecord{{
			Step: 0, Time: 0,
			Susceptible: susceptible, Infected: infected, Removed: removed,
			Incidence: infected,
		}},
		TotalInfected: infected,
	}

	totalSteps := cfg.TotalSteps()
	for step := 1; step <= totalSteps; step++ {
		now := float64(step) * cfg.StepSize

		recoveries := sim.variates.Binomial(infected, gammaDt)

		// Reproduction number scaled by the remaining susceptible fraction.
		rt := cfg.R0 * float64(susceptible) / float64(cfg.PopulationSize)
		infections := sim.variates.NegBinomial(float64(recoveries)*rt, float64(recoveries)*cfg.Dispersion)
		if infections > susceptible {
			infections = susceptible
		}

		if cfg.TrackTransmissions {
			// Infectors are drawn from the pool as it stands this step,
			// before this step's recoveries leave it: the recovering
			// individuals are exactly the ones generating this step's
			// offspring draw.
			newIDs := make([]int, 0, infections)
			for i := 0; i < infections; i++ {
				infector := pool[rng.IntN(len(pool))]
				newIDs = append(newIDs, registry.Add(infector, now))
			}
			for i := 0; i < recoveries; i++ {
				j := rng.IntN(len(pool))
				registry.setRemoved(pool[j], now)
				pool[j] = pool[len(pool)-1]
				pool = pool[:len(pool)-1]
			}
			pool = append(pool, newIDs...)
		}

		susceptible -= infections
		infected += infections - recoveries
		removed += recoveries
		state.TotalInfected += infections
		if susceptible == 0 {
			state.Saturated = true
		}

		state.Steps = append(state.Steps, StepRecord{
			Step: step, Time: now,
			Susceptible: susceptible, Infected: infected, Removed: removed,
			Incidence: infections,
		})
		state.FinalTime = now

		if infected == 0 {
			if state.Saturated {
				state.Reason = TerminationSaturation
			} else {
				state.Reason = TerminationExtinction
			}
			break
		}
	}
	if state.Reason == "" {
		state.Reason = TerminationMaxSteps
	}

	if registry != nil {
		registry.finalize(state.FinalTime)
	}
	return state, registry
}
