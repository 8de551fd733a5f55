// Package sim provides the core stochastic SIR outbreak simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - rng.go / variate.go: seeded RNG partitioning and the binomial /
//     negative-binomial draws that drive recoveries and offspring counts
//   - epidemic.go: the discrete-time step loop, infector bookkeeping, and
//     the undersized-epidemic retry policy
//   - phylogeny.go: conversion of the infection history into a bifurcating
//     time tree (one internal node per transmission event)
//
// # Architecture
//
// A Simulator owns one outbreak realization: its RNG streams, the Individual
// registry, and the OutbreakState it produces. Everything downstream of the
// run is a pure transform over that completed state:
//   - transmission.go: who-infected-whom edge extraction and consistency checks
//   - phylogeny.go: bifurcating time-tree construction, pruning, Newick output
//   - downsample.go: proportional / fixed-count case ascertainment
//   - timeseries.go: half-open binning into incidence and prevalence series
//
// Output files for the external inference pipeline are written by
// linelist_io.go (CSV, Newick) and mcmc.go (YAML parameter hand-off).
//
// Independent realizations share nothing; ensemble.go fans them out over a
// bounded worker pool with per-realization derived seeds.
package sim
