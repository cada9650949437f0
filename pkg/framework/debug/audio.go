package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer provides utilities for analyzing audio buffers.
type AudioAnalyzer struct {
	ClippingThreshold float32
	DCThreshold       float32
	SilenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		ClippingThreshold: 0.99,
		DCThreshold:       0.01,
		SilenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	InfCount       int
	ZeroCrossings  int
	Silent         bool
}

// Clipping reports whether any sample reached the clipping threshold
func (r AnalysisResult) Clipping() bool { return r.ClippedSamples > 0 }

// Finite reports whether every sample was a real number
func (r AnalysisResult) Finite() bool { return r.NaNCount == 0 && r.InfCount == 0 }

// Analyze measures one channel. NaN and Inf samples are counted and left
// out of the level statistics.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	var acc accumulator
	acc.add(a, buffer)
	return acc.result(a)
}

// AnalyzeChannels measures several channels as one signal
func (a *AudioAnalyzer) AnalyzeChannels(channels [][]float32) AnalysisResult {
	var acc accumulator
	for _, ch := range channels {
		acc.add(a, ch)
	}
	return acc.result(a)
}

type accumulator struct {
	r          AnalysisResult
	sum, sumSq float64
	valid      int
}

func (acc *accumulator) add(a *AudioAnalyzer, buffer []float32) {
	var last float32
	for i, sample := range buffer {
		acc.r.Samples++
		v := float64(sample)
		if math.IsNaN(v) {
			acc.r.NaNCount++
			continue
		}
		if math.IsInf(v, 0) {
			acc.r.InfCount++
			continue
		}

		abs := float32(math.Abs(v))
		acc.r.Peak = max(acc.r.Peak, abs)
		if abs >= a.ClippingThreshold {
			acc.r.ClippedSamples++
		}
		acc.sum += v
		acc.sumSq += v * v
		acc.valid++

		if i > 0 && (last < 0) != (sample < 0) {
			acc.r.ZeroCrossings++
		}
		last = sample
	}
}

func (acc *accumulator) result(a *AudioAnalyzer) AnalysisResult {
	r := acc.r
	if acc.valid > 0 {
		r.RMS = float32(math.Sqrt(acc.sumSq / float64(acc.valid)))
		r.DC = float32(acc.sum / float64(acc.valid))
	}
	r.Silent = r.RMS < a.SilenceThreshold
	return r
}

// Check returns a human-readable list of problems with a rendered buffer
func (a *AudioAnalyzer) Check(result AnalysisResult, name string) []string {
	var issues []string
	if result.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN values", name, result.NaNCount))
	}
	if result.InfCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d Inf values", name, result.InfCount))
	}
	if result.Clipping() {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(a.DCThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds 1.0 (%.3f)", name, result.Peak))
	}
	return issues
}

// CompareBuffers returns the largest absolute difference between two
// buffers and where it occurs. Buffers of different length compare as
// infinitely different at the shorter length.
func CompareBuffers(a, b []float32) (maxDiff float32, index int) {
	if len(a) != len(b) {
		return float32(math.Inf(1)), min(len(a), len(b))
	}
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff, index = d, i
		}
	}
	return maxDiff, index
}

// LogStats writes a one-line summary of result to l
func LogStats(l *Logger, name string, result AnalysisResult) {
	l.Info("%s: samples=%d peak=%.3f rms=%.3f dc=%.5f clipped=%d",
		name, result.Samples, result.Peak, result.RMS, result.DC, result.ClippedSamples)
	if !result.Finite() {
		l.Error("%s: %d NaN, %d Inf samples", name, result.NaNCount, result.InfCount)
	}
}
