package stats_test

import (
	"testing"

	"github.com/cladebio/nucmatch/stats"
)

func TestNxBasic(t *testing.T) {
	lengths := []int{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}
	// total = 550; 50% = 275. Cumulative descending: 100,190,270,340 -> N50=70.
	if n50 := stats.Nx(lengths, 50); n50 != 70 {
		t.Errorf("N50 = %d, want 70", n50)
	}
	// 90% = 495. Cumulative: 100,190,270,340,400,450,490,520 -> N90=30.
	if n90 := stats.Nx(lengths, 90); n90 != 30 {
		t.Errorf("N90 = %d, want 30", n90)
	}
}

func TestNxEmpty(t *testing.T) {
	if n := stats.Nx(nil, 50); n != 0 {
		t.Errorf("Nx(nil) = %d, want 0", n)
	}
}

func TestSummarize(t *testing.T) {
	lengths := []int{10, 20, 30}
	s := stats.Summarize(lengths)
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Total != 60 {
		t.Errorf("Total = %d, want 60", s.Total)
	}
	if s.Min != 10 || s.Max != 30 {
		t.Errorf("Min/Max = %d/%d, want 10/30", s.Min, s.Max)
	}
	if s.Mean != 20 {
		t.Errorf("Mean = %f, want 20", s.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := stats.Summarize(nil)
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
}
