package sim

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lvlath/go/core"
	"github.com/lvlath/go/dfs"
)

// TransmissionEdge is one who-infected-whom event with its time.
type TransmissionEdge struct {
	From int
	To   int
	Time float64
}

// BuildTransmissionTree extracts the ordered transmission edge set from a
// completed registry. Pure and deterministic: edges come out sorted by time,
// ties broken by infectee ID.
//
// The registry is validated first; cyclic or dangling infector references
// mean the upstream run corrupted its bookkeeping and surface as
// ErrInconsistentTransmissionData.
func BuildTransmissionTree(reg *Registry) ([]TransmissionEdge, error) {
	if err := ValidateTransmissionData(reg); err != nil {
		return nil, err
	}

	edges := make([]TransmissionEdge, 0, reg.Len())
	for _, ind := range reg.All() {
		if ind.InfectorID == NoInfector {
			continue
		}
		edges = append(edges, TransmissionEdge{
			From: ind.InfectorID,
			To:   ind.ID,
			Time: ind.InfectionTime,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Time != edges[j].Time {
			return edges[i].Time < edges[j].Time
		}
		return edges[i].To < edges[j].To
	})
	return edges, nil
}

// ValidateTransmissionData checks the forest invariants: at least one index
// case, every infector reference in range, no individual infected before
// its infector, and no cycles in the directed who-infected-whom graph.
// Cycle detection runs on an lvlath directed graph (dfs.DetectCycles).
func ValidateTransmissionData(reg *Registry) error {
	if reg == nil || reg.Len() == 0 {
		return fmt.Errorf("%w: empty registry", ErrInconsistentTransmissionData)
	}

	indexCases := 0
	g, err := core.NewGraph(core.WithDirected(true))
	if err != nil {
		return fmt.Errorf("%w: creating transmission graph: %v", ErrInconsistentTransmissionData, err)
	}
	for _, ind := range reg.All() {
		if ind.InfectorID == NoInfector {
			indexCases++
			continue
		}
		if ind.InfectorID < 0 || ind.InfectorID >= reg.Len() {
			return fmt.Errorf("%w: individual %d references missing infector %d",
				ErrInconsistentTransmissionData, ind.ID, ind.InfectorID)
		}
		infector := reg.Get(ind.InfectorID)
		if ind.InfectionTime < infector.InfectionTime {
			return fmt.Errorf("%w: individual %d infected at %f before its infector %d at %f",
				ErrInconsistentTransmissionData, ind.ID, ind.InfectionTime, infector.ID, infector.InfectionTime)
		}
		if _, err := g.AddEdge(strconv.Itoa(ind.InfectorID), strconv.Itoa(ind.ID), 0); err != nil {
			return fmt.Errorf("%w: building transmission graph: %v", ErrInconsistentTransmissionData, err)
		}
	}
	if indexCases == 0 {
		return fmt.Errorf("%w: no index case", ErrInconsistentTransmissionData)
	}

	res, err := dfs.DetectCycles(g)
	if err != nil {
		return fmt.Errorf("%w: cycle detection: %v", ErrInconsistentTransmissionData, err)
	}
	if len(res.Cycles) > 0 {
		return fmt.Errorf("%w: %d cycle(s) in infector references", ErrInconsistentTransmissionData, len(res.Cycles))
	}
	return nil
}
