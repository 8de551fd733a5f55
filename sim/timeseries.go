package sim

import (
	"fmt"
	"math"
)

// TimeBin is one (bin start, count) pair of a TimeSeries.
type TimeBin struct {
	Start float64
	Count int
}

// TimeSeries is a contiguous fixed-step series of counts. Bins are
// half-open [n*step, (n+1)*step): an event exactly on a boundary falls in
// the later bin. Derived, never mutated after construction.
type TimeSeries struct {
	Step float64
	Bins []TimeBin
}

// Counts returns just the per-bin counts, in chronological order.
func (ts *TimeSeries) Counts() []int {
	counts := make([]int, len(ts.Bins))
	for i, b := range ts.Bins {
		counts[i] = b.Count
	}
	return counts
}

// Total returns the sum of all bin counts.
func (ts *TimeSeries) Total() int {
	total := 0
	for _, b := range ts.Bins {
		total += b.Count
	}
	return total
}

// BinEvents aggregates raw event times (infection, removal, or phylogeny
// tip times) into an incidence series with the given step. Gaps between
// occupied bins are zero-filled so the series is contiguous from t=0.
func BinEvents(times []float64, step float64) (*TimeSeries, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: bin step must be positive, got %f", ErrInvalidParameter, step)
	}
	maxBin := -1
	idxs := make([]int, len(times))
	for i, t := range times {
		if t < 0 {
			return nil, fmt.Errorf("%w: negative event time %f", ErrInvalidParameter, t)
		}
		idx := int(math.Floor(t / step))
		idxs[i] = idx
		if idx > maxBin {
			maxBin = idx
		}
	}

	ts := &TimeSeries{Step: step, Bins: make([]TimeBin, maxBin+1)}
	for i := range ts.Bins {
		ts.Bins[i].Start = float64(i) * step
	}
	for _, idx := range idxs {
		ts.Bins[idx].Count++
	}
	return ts, nil
}

// IncidenceSeries bins the outbreak's infection events. The sum of its
// counts equals OutbreakState.TotalInfected for any bin step.
func IncidenceSeries(entries []LineListEntry, step float64) (*TimeSeries, error) {
	return BinEvents(InfectionTimes(entries), step)
}

// PrevalenceSeries reads the running infected count at each bin boundary
// directly out of the recorded trajectory; it is never recomputed from
// events. The value for bin n is the prevalence at the last simulated step
// at or before n*step.
func PrevalenceSeries(state *OutbreakState, step float64) (*TimeSeries, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: bin step must be positive, got %f", ErrInvalidParameter, step)
	}
	if state == nil || len(state.Steps) == 0 {
		return nil, fmt.Errorf("%w: empty outbreak state", ErrInvalidParameter)
	}

	nBins := int(math.Floor(state.FinalTime/step)) + 1
	ts := &TimeSeries{Step: step, Bins: make([]TimeBin, nBins)}
	rec := 0
	for i := 0; i < nBins; i++ {
		boundary := float64(i) * step
		for rec+1 < len(state.Steps) && state.Steps[rec+1].Time <= boundary {
			rec++
		}
		ts.Bins[i] = TimeBin{Start: boundary, Count: state.Steps[rec].Infected}
	}
	return ts, nil
}
