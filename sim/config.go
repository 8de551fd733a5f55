package sim

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// EpidemicConfig groups the parameters of one outbreak realization.
type EpidemicConfig struct {
	R0                  float64 `yaml:"r0"`                   // basic reproduction number
	Dispersion          float64 `yaml:"dispersion"`           // offspring dispersion k (must be > 0)
	PopulationSize      int     `yaml:"population_size"`      // N
	InitialSusceptibles int     `yaml:"initial_susceptibles"` // S_0; N - S_0 index cases start infected
	GenerationTime      float64 `yaml:"generation_time"`      // Tg; recovery rate gamma = 1/Tg
	StepSize            float64 `yaml:"step_size"`            // dt
	TotalTime           float64 `yaml:"total_time"`           // run horizon; step budget = TotalTime/StepSize
	MinEpidemicSize     int     `yaml:"min_epidemic_size"`    // retry threshold for burned-out runs
	MaxAttempts         int     `yaml:"max_attempts"`         // retry cap before giving up
	TrackTransmissions  bool    `yaml:"track_transmissions"`  // record the who-infected-whom registry
	Seed                int64   `yaml:"seed"`
}

// Gamma returns the recovery rate 1/Tg.
func (c *EpidemicConfig) Gamma() float64 {
	return 1.0 / c.GenerationTime
}

// TotalSteps returns the step budget implied by the horizon and step size.
func (c *EpidemicConfig) TotalSteps() int {
	return int(math.Round(c.TotalTime / c.StepSize))
}

// Validate checks all parameter ranges before any simulation work begins.
// Every violation wraps ErrInvalidParameter.
func (c *EpidemicConfig) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population_size must be positive, got %d", ErrInvalidParameter, c.PopulationSize)
	}
	if c.InitialSusceptibles <= 0 || c.InitialSusceptibles >= c.PopulationSize {
		return fmt.Errorf("%w: initial_susceptibles must be in (0, population_size), got %d", ErrInvalidParameter, c.InitialSusceptibles)
	}
	if c.R0 < 0 {
		return fmt.Errorf("%w: r0 must be non-negative, got %f", ErrInvalidParameter, c.R0)
	}
	if c.Dispersion <= 0 {
		return fmt.Errorf("%w: dispersion must be positive, got %f", ErrInvalidParameter, c.Dispersion)
	}
	if c.GenerationTime <= 0 {
		return fmt.Errorf("%w: generation_time must be positive, got %f", ErrInvalidParameter, c.GenerationTime)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("%w: step_size must be positive, got %f", ErrInvalidParameter, c.StepSize)
	}
	if p := c.StepSize * c.Gamma(); p < 0 || p > 1 {
		return fmt.Errorf("%w: step_size*gamma must be in [0,1], got %f", ErrInvalidParameter, p)
	}
	if c.TotalSteps() <= 0 {
		return fmt.Errorf("%w: total_time must allow at least one step, got %f", ErrInvalidParameter, c.TotalTime)
	}
	if c.MinEpidemicSize < 0 {
		return fmt.Errorf("%w: min_epidemic_size must be non-negative, got %d", ErrInvalidParameter, c.MinEpidemicSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1, got %d", ErrInvalidParameter, c.MaxAttempts)
	}
	return nil
}

// SamplingStrategy names a downsampling scheme.
type SamplingStrategy string

const (
	// StrategyProportional includes each individual independently with a
	// fixed probability (Bernoulli ascertainment).
	StrategyProportional SamplingStrategy = "proportional"

	// StrategyFixedCount selects exactly Count individuals uniformly
	// without replacement.
	StrategyFixedCount SamplingStrategy = "fixed-count"
)

// ValidSamplingStrategies is the set of recognized strategy names.
// Shared by Validate() and Downsample() to avoid duplication.
var ValidSamplingStrategies = map[SamplingStrategy]bool{
	StrategyProportional: true,
	StrategyFixedCount:   true,
}

// SamplingConfig groups downsampling parameters.
type SamplingConfig struct {
	Strategy    SamplingStrategy `yaml:"strategy"`
	Probability float64          `yaml:"probability"` // proportional only
	Count       int              `yaml:"count"`       // fixed-count only
	Seed        int64            `yaml:"seed"`
}

// Validate checks strategy name and parameter ranges. The fixed-count bound
// against the realized epidemic size is checked at sampling time, since it
// depends on the outbreak.
func (c *SamplingConfig) Validate() error {
	if !ValidSamplingStrategies[c.Strategy] {
		return fmt.Errorf("%w: unknown sampling strategy %q", ErrInvalidParameter, c.Strategy)
	}
	if c.Strategy == StrategyProportional && (c.Probability < 0 || c.Probability > 1) {
		return fmt.Errorf("%w: sampling probability must be in [0,1], got %f", ErrInvalidParameter, c.Probability)
	}
	if c.Strategy == StrategyFixedCount && c.Count <= 0 {
		return fmt.Errorf("%w: sampling count must be positive, got %d", ErrInvalidParameter, c.Count)
	}
	return nil
}

// OutputConfig groups the file paths the CLI writes. Empty path = skip.
type OutputConfig struct {
	LineListPath   string  `yaml:"line_list"`
	NewickPath     string  `yaml:"newick"`
	IncidencePath  string  `yaml:"incidence"`
	PrevalencePath string  `yaml:"prevalence"`
	BinWidth       float64 `yaml:"bin_width"`
}

// Scenario bundles a full run description, loadable from a YAML file.
type Scenario struct {
	Epidemic EpidemicConfig `yaml:"epidemic"`
	Sampling SamplingConfig `yaml:"sampling"`
	Output   OutputConfig   `yaml:"output"`
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the epidemic block and, if a strategy is set, the
// sampling block.
func (s *Scenario) Validate() error {
	if err := s.Epidemic.Validate(); err != nil {
		return err
	}
	if s.Sampling.Strategy != "" {
		if err := s.Sampling.Validate(); err != nil {
			return err
		}
	}
	if s.Output.BinWidth < 0 {
		return fmt.Errorf("%w: bin_width must be non-negative, got %f", ErrInvalidParameter, s.Output.BinWidth)
	}
	return nil
}
