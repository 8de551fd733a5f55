package sim

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Realization is one completed ensemble member.
type Realization struct {
	Index    int
	State    *OutbreakState
	Registry *Registry
}

// RunEnsemble runs n independent realizations of cfg on a bounded worker
// pool. Each member derives its own seed from cfg.Seed and its index, owns
// its RNG streams and registry, and shares no mutable state with the
// others. Results come back ordered by index; the first failure aborts the
// return (remaining workers drain).
func RunEnsemble(cfg EpidemicConfig, n, workers int) ([]Realization, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: ensemble size must be positive, got %d", ErrInvalidParameter, n)
	}
	if workers <= 0 {
		workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]Realization, n)
	errs := make([]error, n)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				memberCfg := cfg
				memberCfg.Seed = cfg.Seed ^ fnv1a64(SubsystemRealization(i))
				s, err := NewSimulator(memberCfg)
				if err == nil {
					err = s.Run()
				}
				if err != nil {
					errs[i] = fmt.Errorf("realization %d: %w", i, err)
					continue
				}
				results[i] = Realization{Index: i, State: s.State, Registry: s.Registry}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	logrus.Infof("ensemble complete: %d realizations", n)
	return results, nil
}
