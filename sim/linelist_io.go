package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteLineListCSV writes a line list to path as CSV with a header row.
// Infector is empty for index cases.
func WriteLineListCSV(path string, entries []LineListEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating line list file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"id", "infector", "infection_time", "removal_time", "sampled"}); err != nil {
		return fmt.Errorf("writing line list header: %w", err)
	}
	for _, e := range entries {
		infector := ""
		if e.InfectorID != NoInfector {
			infector = strconv.Itoa(e.InfectorID)
		}
		row := []string{
			strconv.Itoa(e.ID),
			infector,
			strconv.FormatFloat(e.InfectionTime, 'f', 6, 64),
			strconv.FormatFloat(e.RemovalTime, 'f', 6, 64),
			strconv.FormatBool(e.Sampled),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing line list row %d: %w", e.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTimeSeriesCSV writes a time series to path as (bin_start, count) CSV.
func WriteTimeSeriesCSV(path string, ts *TimeSeries) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating time series file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"bin_start", "count"}); err != nil {
		return fmt.Errorf("writing time series header: %w", err)
	}
	for _, b := range ts.Bins {
		row := []string{
			strconv.FormatFloat(b.Start, 'f', 6, 64),
			strconv.Itoa(b.Count),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing time series row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteNewick writes the phylogeny to path in Newick format with a trailing
// newline, the form downstream tree readers expect.
func WriteNewick(path string, p *Phylogeny) error {
	if err := os.WriteFile(path, []byte(p.Newick()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing newick file: %w", err)
	}
	return nil
}
