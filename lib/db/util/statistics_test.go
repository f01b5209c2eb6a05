package util

import (
	"testing"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if stats.Mean != 5 {
		t.Errorf("Expected mean 5, got %f", stats.Mean)
	}
	if stats.StdDeviation != 2 {
		t.Errorf("Expected std deviation 2, got %f", stats.StdDeviation)
	}
	if stats.Min != 2 || stats.Max != 9 {
		t.Errorf("Expected min/max 2/9, got %f/%f", stats.Min, stats.Max)
	}
}

func TestNewStatsEmpty(t *testing.T) {
	stats := NewStats(nil)
	if stats.Mean != 0 || stats.StdDeviation != 0 {
		t.Errorf("Expected zero stats for empty input, got %+v", stats)
	}
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()

	for i := 0; i < 100; i++ {
		h.AddSample(100) // falls into the 256 byte bucket
	}

	if h.GetCount() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.GetCount())
	}
	if h.AverageSize() != 100 {
		t.Errorf("Expected average 100, got %d", h.AverageSize())
	}

	// All samples are in the (64, 256] bucket, the median estimate is the
	// bucket midpoint
	if median := h.MedianEstimate(); median != (64+256)/2 {
		t.Errorf("Expected median estimate %d, got %d", (64+256)/2, median)
	}

	h.Reset()
	if h.GetCount() != 0 {
		t.Errorf("Expected empty histogram after reset, got %d samples", h.GetCount())
	}
}

func TestHashStringDeterministic(t *testing.T) {
	if HashString("node-1", 0) != HashString("node-1", 0) {
		t.Error("Expected identical hashes for identical input")
	}
	if HashString("node-1", 0) == HashString("node-2", 0) {
		t.Error("Expected different hashes for different input")
	}
	if HashString("node-1", 0) == HashString("node-1", 42) {
		t.Error("Expected different hashes for different seeds")
	}
}
