package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/epi-sim/epi-sim/sim"
)

// Flag defaults must assemble into a scenario the engine accepts.
func TestScenarioFromFlags_DefaultsAreValid(t *testing.T) {
	sc := scenarioFromFlags()
	require.NoError(t, sc.Validate())

	assert.Equal(t, 2.0, sc.Epidemic.R0)
	assert.Equal(t, 0.5, sc.Epidemic.Dispersion)
	assert.Equal(t, 5000, sc.Epidemic.PopulationSize)
	assert.Equal(t, 4999, sc.Epidemic.InitialSusceptibles)
	assert.True(t, sc.Epidemic.TrackTransmissions)
	assert.Empty(t, sc.Sampling.Strategy, "downsampling is off by default")
}

func TestScenarioFromFlags_StepBudget(t *testing.T) {
	sc := scenarioFromFlags()
	assert.Equal(t, 15000, sc.Epidemic.TotalSteps())
}

func TestRunCommand_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", cmd.Name())

	for _, flag := range []string{"r0", "dispersion-k", "population", "susceptibles",
		"dt", "total-dt", "min-epi-size", "max-attempts", "track", "seed",
		"sample-strategy", "newick-out", "bin-width"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %s", flag)
	}
}

func TestWriteOutputs_NoPathsIsNoop(t *testing.T) {
	sc := scenarioFromFlags()
	s, err := sim.NewSimulator(sc.Epidemic)
	require.NoError(t, err)
	require.NoError(t, s.Run())
	require.NoError(t, writeOutputs(s, sc))
}

func TestWriteOutputs_NewickWithoutTracking(t *testing.T) {
	sc := scenarioFromFlags()
	sc.Epidemic.PopulationSize = 200
	sc.Epidemic.InitialSusceptibles = 199
	sc.Epidemic.TotalTime = 200
	sc.Epidemic.MinEpidemicSize = 1
	sc.Epidemic.TrackTransmissions = false
	sc.Output.NewickPath = "tree.nwk"

	s, err := sim.NewSimulator(sc.Epidemic)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	err = writeOutputs(s, sc)
	require.ErrorIs(t, err, sim.ErrInvalidParameter,
		"phylogeny output without a registry must surface as an error, not exit")
}
