package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// This file is the boundary contract with the external MCMC/particle-filter
// inference program. The types describe what that program consumes; nothing
// here interprets the values.

// ValidTransforms is the set of recognized parameter transforms.
var ValidTransforms = map[string]bool{"": true, "none": true, "inverse": true}

// ValidLikelihoodModes is the set of recognized likelihood modes.
var ValidLikelihoodModes = map[string]bool{
	"epidemiological+genetic": true,
	"epidemiological-only":    true,
	"genetic-only":            true,
}

// PriorSpec names a prior family and its parameters, in family order.
type PriorSpec struct {
	Family string    `yaml:"family"`
	Params []float64 `yaml:"params"`
}

// ProposalSpec is a proposal kernel's width and bounds.
type ProposalSpec struct {
	Width float64 `yaml:"width"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// ParamSpec describes one estimated parameter for the inference program.
type ParamSpec struct {
	Name      string       `yaml:"name"`
	Init      float64      `yaml:"init"`
	Transform string       `yaml:"transform"` // "none" (default) or "inverse"
	Prior     PriorSpec    `yaml:"prior"`
	Proposal  ProposalSpec `yaml:"proposal"`
}

// RunOptions carries the inference program's run controls and output paths.
type RunOptions struct {
	Particles         int      `yaml:"particles"`
	Iterations        int      `yaml:"iterations"`
	LogEvery          int      `yaml:"log_every"`
	ResampleEvery     int      `yaml:"resample_every"`
	LikelihoodMode    string   `yaml:"likelihood_mode"`
	ResampleThreshold float64  `yaml:"resample_threshold"`
	OutputPaths       []string `yaml:"output_paths"`
}

// InferenceInputs is the complete hand-off file: per-parameter specs plus
// run options.
type InferenceInputs struct {
	Parameters []ParamSpec `yaml:"parameters"`
	Options    RunOptions  `yaml:"options"`
}

// Validate checks names and enumerations; value semantics belong to the
// inference program.
func (in *InferenceInputs) Validate() error {
	if len(in.Parameters) == 0 {
		return fmt.Errorf("%w: no parameters to estimate", ErrInvalidParameter)
	}
	seen := make(map[string]bool, len(in.Parameters))
	for _, p := range in.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter with empty name", ErrInvalidParameter)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidParameter, p.Name)
		}
		seen[p.Name] = true
		if !ValidTransforms[p.Transform] {
			return fmt.Errorf("%w: unknown transform %q for parameter %q", ErrInvalidParameter, p.Transform, p.Name)
		}
		if p.Proposal.Lower > p.Proposal.Upper {
			return fmt.Errorf("%w: parameter %q has lower bound %f above upper %f",
				ErrInvalidParameter, p.Name, p.Proposal.Lower, p.Proposal.Upper)
		}
	}
	if !ValidLikelihoodModes[in.Options.LikelihoodMode] {
		return fmt.Errorf("%w: unknown likelihood mode %q", ErrInvalidParameter, in.Options.LikelihoodMode)
	}
	if in.Options.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidParameter, in.Options.Particles)
	}
	if in.Options.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParameter, in.Options.Iterations)
	}
	return nil
}

// LoadInferenceInputs reads and parses a YAML hand-off file.
func LoadInferenceInputs(path string) (*InferenceInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inference inputs: %w", err)
	}
	var in InferenceInputs
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing inference inputs: %w", err)
	}
	return &in, nil
}

// WriteInferenceInputs validates and writes the hand-off file as YAML.
func WriteInferenceInputs(path string, in *InferenceInputs) error {
	if err := in.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding inference inputs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing inference inputs: %w", err)
	}
	return nil
}
