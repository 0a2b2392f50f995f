package telemetry

import (
	"container/list"

	"github.com/montanaflynn/stats"
)

// RunningAverage maintains the mean of a sliding window of the most
// recent power samples, in constant time per sample. Reworked from the
// teacher's package-level singleton (runAvg.Calc/Init) into an
// ordinary instance so each power sensor or controller can keep its
// own independent window instead of sharing global state.
type RunningAverage struct {
	window     list.List
	windowSize int
	sum        float64
}

// NewRunningAverage creates a running average over the given window
// size, in samples.
func NewRunningAverage(windowSize int) *RunningAverage {
	return &RunningAverage{windowSize: windowSize}
}

// Add records a new sample and returns the updated mean of the window.
func (ra *RunningAverage) Add(value float64) float64 {
	if ra.window.Len() >= ra.windowSize {
		front := ra.window.Front()
		ra.sum -= front.Value.(float64)
		ra.window.Remove(front)
	}
	ra.window.PushBack(value)
	ra.sum += value
	return ra.sum / float64(ra.window.Len())
}

// Samples returns the values currently held in the window, oldest
// first.
func (ra *RunningAverage) Samples() []float64 {
	out := make([]float64, 0, ra.window.Len())
	for e := ra.window.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(float64))
	}
	return out
}

// Summary is descriptive statistics over the current window, used to
// report power-trace stability alongside the live running average.
type Summary struct {
	Mean   float64
	StdDev float64
}

// Describe computes mean and population standard deviation over the
// window's current samples.
func (ra *RunningAverage) Describe() (Summary, error) {
	samples := ra.Samples()
	mean, err := stats.Mean(samples)
	if err != nil {
		return Summary{}, err
	}
	stddev, err := stats.StandardDeviation(samples)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Mean: mean, StdDev: stddev}, nil
}
