package sim

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceConfig is the regression scenario: R0=2, k=0.5, N=5000, S=4999,
// dt=0.1, horizon 1500, minimum size 20, seed 1010113.
func referenceConfig() EpidemicConfig {
	return EpidemicConfig{
		R0:                  2,
		Dispersion:          0.5,
		PopulationSize:      5000,
		InitialSusceptibles: 4999,
		GenerationTime:      1.0,
		StepSize:            0.1,
		TotalTime:           1500,
		MinEpidemicSize:     20,
		MaxAttempts:         100,
		TrackTransmissions:  true,
		Seed:                1010113,
	}
}

func runReference(t *testing.T) *Simulator {
	t.Helper()
	s, err := NewSimulator(referenceConfig())
	require.NoError(t, err)
	require.NoError(t, s.Run())
	return s
}

func TestNewSimulator_InvalidParameters(t *testing.T) {
	base := referenceConfig()
	tests := []struct {
		name   string
		mutate func(*EpidemicConfig)
	}{
		{"zero population", func(c *EpidemicConfig) { c.PopulationSize = 0 }},
		{"negative population", func(c *EpidemicConfig) { c.PopulationSize = -10 }},
		{"susceptibles equal population", func(c *EpidemicConfig) { c.InitialSusceptibles = c.PopulationSize }},
		{"zero susceptibles", func(c *EpidemicConfig) { c.InitialSusceptibles = 0 }},
		{"negative r0", func(c *EpidemicConfig) { c.R0 = -0.1 }},
		{"zero dispersion", func(c *EpidemicConfig) { c.Dispersion = 0 }},
		{"negative dispersion", func(c *EpidemicConfig) { c.Dispersion = -1 }},
		{"zero generation time", func(c *EpidemicConfig) { c.GenerationTime = 0 }},
		{"dt*gamma above one", func(c *EpidemicConfig) { c.StepSize = 2; c.GenerationTime = 1 }},
		{"zero step size", func(c *EpidemicConfig) { c.StepSize = 0 }},
		{"zero horizon", func(c *EpidemicConfig) { c.TotalTime = 0 }},
		{"zero attempts", func(c *EpidemicConfig) { c.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := NewSimulator(cfg)
			require.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestSimulator_ReferenceScenario(t *testing.T) {
	s := runReference(t)

	// Golden values recorded from the seeded run; any drift in the draw
	// sequence or the step loop shows up here.
	assert.Equal(t, 3941, s.State.TotalInfected)
	assert.Equal(t, 4, s.State.Attempts)
	assert.Equal(t, TerminationExtinction, s.State.Reason)
	assert.InDelta(t, 19.9, s.State.FinalTime, 1e-9)

	assert.Greater(t, s.State.TotalInfected, 20, "accepted run must exceed the minimum size")
	require.NotNil(t, s.Registry)
	assert.Equal(t, s.State.TotalInfected, s.Registry.Len(),
		"registry must hold exactly one record per infection")
}

func TestSimulator_Deterministic(t *testing.T) {
	s1 := runReference(t)
	s2 := runReference(t)

	if !reflect.DeepEqual(s1.State, s2.State) {
		t.Fatal("identically-seeded runs produced different trajectories")
	}
	if !reflect.DeepEqual(s1.Registry.All(), s2.Registry.All()) {
		t.Fatal("identically-seeded runs produced different registries")
	}
}

func TestSimulator_Conservation(t *testing.T) {
	s := runReference(t)
	for _, rec := range s.State.Steps {
		if rec.Susceptible+rec.Infected+rec.Removed != 5000 {
			t.Fatalf("step %d: S+I+R = %d, want 5000", rec.Step,
				rec.Susceptible+rec.Infected+rec.Removed)
		}
		if rec.Susceptible < 0 || rec.Infected < 0 || rec.Removed < 0 {
			t.Fatalf("step %d: negative compartment count %+v", rec.Step, rec)
		}
	}
}

func TestSimulator_IncidenceSumsToTotalInfected(t *testing.T) {
	s := runReference(t)
	sum := 0
	for _, rec := range s.State.Steps {
		sum += rec.Incidence
	}
	assert.Equal(t, s.State.TotalInfected, sum)
}

func TestSimulator_RegistryWellFormed(t *testing.T) {
	s := runReference(t)
	indexCases := 0
	for _, ind := range s.Registry.All() {
		if ind.InfectorID == NoInfector {
			indexCases++
			continue
		}
		require.GreaterOrEqual(t, ind.InfectorID, 0)
		require.Less(t, ind.InfectorID, s.Registry.Len())
		infector := s.Registry.Get(ind.InfectorID)
		// An infector transmits no earlier than its own infection and no
		// later than its removal.
		require.GreaterOrEqual(t, ind.InfectionTime, infector.InfectionTime)
		require.LessOrEqual(t, ind.InfectionTime, infector.RemovalTime)
	}
	assert.Equal(t, 1, indexCases)
}

func TestSimulator_RemovalTimesFinalized(t *testing.T) {
	s := runReference(t)
	for _, ind := range s.Registry.All() {
		if ind.RemovalTime < ind.InfectionTime {
			t.Fatalf("individual %d removed at %f before infection at %f",
				ind.ID, ind.RemovalTime, ind.InfectionTime)
		}
	}
}

func TestSimulator_NoTracking(t *testing.T) {
	cfg := referenceConfig()
	cfg.TrackTransmissions = false
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Run())
	assert.Nil(t, s.Registry)
	assert.Greater(t, s.State.TotalInfected, 20)
}

func TestSimulator_InsufficientSize(t *testing.T) {
	// R0=0 means the index case never transmits: every attempt burns out at
	// size 1 and the retry budget must exhaust.
	cfg := referenceConfig()
	cfg.R0 = 0
	cfg.MaxAttempts = 3
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	err = s.Run()
	require.ErrorIs(t, err, ErrInsufficientEpidemicSize)
}

func TestSimulator_AttemptsRecorded(t *testing.T) {
	s := runReference(t)
	assert.GreaterOrEqual(t, s.State.Attempts, 1)
	assert.LessOrEqual(t, s.State.Attempts, 100)
}
