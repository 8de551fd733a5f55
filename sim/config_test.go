package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpidemicConfig_TotalSteps(t *testing.T) {
	cfg := EpidemicConfig{StepSize: 0.1, TotalTime: 1500}
	assert.Equal(t, 15000, cfg.TotalSteps())
}

func TestEpidemicConfig_Gamma(t *testing.T) {
	cfg := EpidemicConfig{GenerationTime: 4}
	assert.Equal(t, 0.25, cfg.Gamma())
}

func TestLoadScenario_RoundTrip(t *testing.T) {
	yamlDoc := `
epidemic:
  r0: 2.0
  dispersion: 0.5
  population_size: 5000
  initial_susceptibles: 4999
  generation_time: 1.0
  step_size: 0.1
  total_time: 1500
  min_epidemic_size: 20
  max_attempts: 100
  track_transmissions: true
  seed: 1010113
sampling:
  strategy: fixed-count
  count: 100
  seed: 42
output:
  newick: tree.nwk
  bin_width: 1.0
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.NoError(t, sc.Validate())

	assert.Equal(t, 2.0, sc.Epidemic.R0)
	assert.Equal(t, 0.5, sc.Epidemic.Dispersion)
	assert.Equal(t, int64(1010113), sc.Epidemic.Seed)
	assert.True(t, sc.Epidemic.TrackTransmissions)
	assert.Equal(t, StrategyFixedCount, sc.Sampling.Strategy)
	assert.Equal(t, 100, sc.Sampling.Count)
	assert.Equal(t, "tree.nwk", sc.Output.NewickPath)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadScenario_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epidemic: ["), 0o644))
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestScenario_ValidatePropagatesEpidemicErrors(t *testing.T) {
	sc := &Scenario{Epidemic: EpidemicConfig{PopulationSize: -1}}
	require.ErrorIs(t, sc.Validate(), ErrInvalidParameter)
}

func TestScenario_ValidateSamplingOnlyWhenSet(t *testing.T) {
	sc := &Scenario{Epidemic: referenceConfig()}
	require.NoError(t, sc.Validate(), "empty sampling strategy means no downsampling")

	sc.Sampling = SamplingConfig{Strategy: "bogus"}
	require.ErrorIs(t, sc.Validate(), ErrInvalidParameter)
}
