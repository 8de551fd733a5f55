// Aggregated reporting for a completed outbreak realization.

package sim

import "fmt"

// Summary displays the final counts and trajectory shape of an accepted
// realization. Useful for eyeballing a run before handing files to the
// inference pipeline.
func (s *OutbreakState) Summary() {
	fmt.Println("=== Outbreak Summary ===")
	fmt.Printf("Total infected       : %d\n", s.TotalInfected)
	fmt.Printf("Termination          : %s\n", s.Reason)
	fmt.Printf("Attempts used        : %d\n", s.Attempts)
	fmt.Printf("Final time           : %.2f\n", s.FinalTime)
	fmt.Printf("Steps recorded       : %d\n", len(s.Steps))
	if len(s.Steps) > 0 {
		last := s.Steps[len(s.Steps)-1]
		fmt.Printf("Final S/I/R          : %d/%d/%d\n", last.Susceptible, last.Infected, last.Removed)
		peak, at := s.peakPrevalence()
		fmt.Printf("Peak prevalence      : %d (t=%.2f)\n", peak, at)
	}
}

func (s *OutbreakState) peakPrevalence() (int, float64) {
	peak, at := 0, 0.0
	for _, rec := range s.Steps {
		if rec.Infected > peak {
			peak, at = rec.Infected, rec.Time
		}
	}
	return peak, at
}
