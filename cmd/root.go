package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/epi-sim/epi-sim/sim"
)

var (
	// CLI flags for the epidemic engine
	seed                int64   // Seed for every stochastic draw
	logLevel            string  // Log verbosity level
	r0                  float64 // Basic reproduction number
	dispersion          float64 // Offspring dispersion k
	populationSize      int     // Population size N
	initialSusceptibles int     // Initial susceptibles S
	generationTime      float64 // Mean generation time Tg
	stepSize            float64 // Step size dt
	totalTime           float64 // Run horizon (total dt)
	minEpidemicSize     int     // Minimum acceptable final epidemic size
	maxAttempts         int     // Retry cap for undersized epidemics
	track               bool    // Record the who-infected-whom registry

	// CLI flags for downsampling
	sampleStrategy    string  // "", "proportional" or "fixed-count"
	sampleProbability float64 // Proportional inclusion probability
	sampleCount       int     // Fixed-count sample size
	sampleSeed        int64   // Seed for the sampling stream

	// CLI flags for outputs
	scenarioPath   string  // YAML scenario file overriding the flags above
	lineListPath   string  // Line list CSV output
	newickPath     string  // Phylogeny Newick output
	incidencePath  string  // Incidence time series CSV output
	prevalencePath string  // Prevalence time series CSV output
	binWidth       float64 // Time series bin width
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "epi-sim",
	Short: "Stochastic SIR outbreak simulator with transmission-tree and phylogeny derivation",
}

// runCmd executes one outbreak realization using parameters from CLI flags
// (or a YAML scenario file), derives the requested views, and writes output
// files for the inference pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate an outbreak and derive its trees and time series",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scenario := scenarioFromFlags()
		if scenarioPath != "" {
			loaded, err := sim.LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("unable to read scenario: %v", err)
			}
			scenario = loaded
		}
		if err := scenario.Validate(); err != nil {
			logrus.Fatalf("invalid scenario: %v", err)
		}

		logrus.Infof("Starting outbreak with R0=%.2f, k=%.2f, N=%d, S=%d, dt=%.3f, horizon=%.1f",
			scenario.Epidemic.R0, scenario.Epidemic.Dispersion, scenario.Epidemic.PopulationSize,
			scenario.Epidemic.InitialSusceptibles, scenario.Epidemic.StepSize, scenario.Epidemic.TotalTime)

		s, err := sim.NewSimulator(scenario.Epidemic)
		if err != nil {
			logrus.Fatalf("invalid parameters: %v", err)
		}
		if err := s.Run(); err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		s.State.Summary()

		if err := writeOutputs(s, scenario); err != nil {
			logrus.Fatalf("writing outputs: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// scenarioFromFlags assembles a Scenario from the flat flag surface.
func scenarioFromFlags() *sim.Scenario {
	return &sim.Scenario{
		Epidemic: sim.EpidemicConfig{
			R0:                  r0,
			Dispersion:          dispersion,
			PopulationSize:      populationSize,
			InitialSusceptibles: initialSusceptibles,
			GenerationTime:      generationTime,
			StepSize:            stepSize,
			TotalTime:           totalTime,
			MinEpidemicSize:     minEpidemicSize,
			MaxAttempts:         maxAttempts,
			TrackTransmissions:  track,
			Seed:                seed,
		},
		Sampling: sim.SamplingConfig{
			Strategy:    sim.SamplingStrategy(sampleStrategy),
			Probability: sampleProbability,
			Count:       sampleCount,
			Seed:        sampleSeed,
		},
		Output: sim.OutputConfig{
			LineListPath:   lineListPath,
			NewickPath:     newickPath,
			IncidencePath:  incidencePath,
			PrevalencePath: prevalencePath,
			BinWidth:       binWidth,
		},
	}
}

// writeOutputs derives the requested views from the accepted realization
// and writes them. Tree-derived outputs require transmission tracking.
func writeOutputs(s *sim.Simulator, scenario *sim.Scenario) error {
	out := scenario.Output
	entries := []sim.LineListEntry{}
	if s.Registry != nil {
		entries = s.Registry.LineList()
	}

	var sample *sim.SampleSet
	if scenario.Sampling.Strategy != "" {
		set, reduced, err := sim.Downsample(s.Registry, scenario.Sampling)
		if err != nil {
			return err
		}
		sample = set
		entries = reduced
		logrus.Infof("downsampled to %d of %d individuals (%s)",
			set.Size(), s.Registry.Len(), set.Strategy)
	}

	if out.LineListPath != "" {
		if err := sim.WriteLineListCSV(out.LineListPath, entries); err != nil {
			return err
		}
	}

	if out.NewickPath != "" {
		if s.Registry == nil {
			return fmt.Errorf("%w: phylogeny output requires --track", sim.ErrInvalidParameter)
		}
		phylo, err := sim.BuildPhylogeny(s.Registry)
		if err != nil {
			return err
		}
		if sample != nil {
			phylo, err = phylo.Prune(sample)
			if err != nil {
				return err
			}
		}
		if err := sim.WriteNewick(out.NewickPath, phylo); err != nil {
			return err
		}
	}

	if out.IncidencePath != "" {
		ts, err := sim.IncidenceSeries(entries, out.BinWidth)
		if err != nil {
			return err
		}
		if err := sim.WriteTimeSeriesCSV(out.IncidencePath, ts); err != nil {
			return err
		}
	}
	if out.PrevalencePath != "" {
		ts, err := sim.PrevalenceSeries(s.State, out.BinWidth)
		if err != nil {
			return err
		}
		if err := sim.WriteTimeSeriesCSV(out.PrevalencePath, ts); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for every stochastic draw")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Epidemic engine configs
	runCmd.Flags().Float64Var(&r0, "r0", 2.0, "Basic reproduction number")
	runCmd.Flags().Float64Var(&dispersion, "dispersion-k", 0.5, "Offspring dispersion k (smaller = more superspreading)")
	runCmd.Flags().IntVar(&populationSize, "population", 5000, "Population size N")
	runCmd.Flags().IntVar(&initialSusceptibles, "susceptibles", 4999, "Initial susceptibles S")
	runCmd.Flags().Float64Var(&generationTime, "generation-time", 1.0, "Mean generation time Tg (recovery rate = 1/Tg)")
	runCmd.Flags().Float64Var(&stepSize, "dt", 0.1, "Discrete step size")
	runCmd.Flags().Float64Var(&totalTime, "total-dt", 1500, "Run horizon in time units")
	runCmd.Flags().IntVar(&minEpidemicSize, "min-epi-size", 20, "Minimum acceptable final epidemic size")
	runCmd.Flags().IntVar(&maxAttempts, "max-attempts", 100, "Retry cap for undersized epidemics")
	runCmd.Flags().BoolVar(&track, "track", true, "Record the who-infected-whom registry")

	// Downsampling configs
	runCmd.Flags().StringVar(&sampleStrategy, "sample-strategy", "", "Downsampling strategy (proportional, fixed-count); empty = no downsampling")
	runCmd.Flags().Float64Var(&sampleProbability, "sample-probability", 0.1, "Inclusion probability for proportional sampling")
	runCmd.Flags().IntVar(&sampleCount, "sample-count", 100, "Sample size for fixed-count sampling")
	runCmd.Flags().Int64Var(&sampleSeed, "sample-seed", 42, "Seed for the sampling stream")

	// Scenario and output files
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides the flags above)")
	runCmd.Flags().StringVar(&lineListPath, "line-list-out", "", "Line list CSV output path")
	runCmd.Flags().StringVar(&newickPath, "newick-out", "", "Phylogeny Newick output path")
	runCmd.Flags().StringVar(&incidencePath, "incidence-out", "", "Incidence time series CSV output path")
	runCmd.Flags().StringVar(&prevalencePath, "prevalence-out", "", "Prevalence time series CSV output path")
	runCmd.Flags().Float64Var(&binWidth, "bin-width", 1.0, "Time series bin width")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
