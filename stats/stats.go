// Package stats computes summary statistics over a set of alignment or
// sequence lengths, for the CLI's -stats report.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the N50/N90-style length distribution statistics and
// basic descriptive statistics.
type Summary struct {
	Count    int
	Total    int64
	Mean     float64
	StdDev   float64
	Min, Max int
	N50, N90 int
}

// Nx returns the length L such that the sum of all lengths >= L
// accounts for at least x percent of the total (the standard
// assembly-statistics definition of N50/N90, generalized to an
// arbitrary percentile).
func Nx(lengths []int, x float64) int {
	if len(lengths) == 0 {
		return 0
	}
	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	total := 0
	for _, l := range sorted {
		total += l
	}
	threshold := float64(total) * x / 100

	running := 0
	for _, l := range sorted {
		running += l
		if float64(running) >= threshold {
			return l
		}
	}
	return sorted[len(sorted)-1]
}

// Summarize computes a Summary over lengths, per the CLI's -stats
// option. Mean and StdDev are computed via gonum.org/v1/gonum/stat's
// MeanStdDev; N50/N90 have no gonum equivalent and are computed
// directly above.
func Summarize(lengths []int) Summary {
	var s Summary
	s.Count = len(lengths)
	if s.Count == 0 {
		return s
	}

	fl := make([]float64, len(lengths))
	s.Min, s.Max = lengths[0], lengths[0]
	for i, l := range lengths {
		fl[i] = float64(l)
		s.Total += int64(l)
		if l < s.Min {
			s.Min = l
		}
		if l > s.Max {
			s.Max = l
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(fl, nil)

	s.N50 = Nx(lengths, 50)
	s.N90 = Nx(lengths, 90)
	return s
}
