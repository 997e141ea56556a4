// SPDX-License-Identifier: EPL-2.0

// Package waveform reduces decoded audio to a fixed-length peak envelope
// for display.
//
// The clip is downmixed to mono, normalized by its absolute peak and split
// into equal buckets; each point is the largest absolute amplitude in its
// bucket. Points are always finite and within [0,1]. A silent clip gives
// all zeros.
package waveform

import (
	"errors"
	"fmt"
	"math"

	"github.com/ik5/audedit/audio"
)

// DefaultPoints is the envelope length used when the caller has no preference.
const DefaultPoints = 100

var (
	ErrInvalidPoints    = errors.New("number of waveform points must be positive")
	ErrExtractionFailed = errors.New("waveform extraction failed")
)

// Result is the envelope plus the clip length in seconds.
type Result struct {
	Waveform []float64 `json:"waveform"`
	Duration float64   `json:"duration"`
}

// Amplitude is one normalized sample. Degenerate marks a value that could
// not be normalized (zero peak, NaN or Inf) and reads as 0.
type Amplitude struct {
	Value      float64
	Degenerate bool
}

// Normalize divides sample by peak.
func Normalize(sample, peak float64) Amplitude {
	if peak == 0 || !finite(peak) || !finite(sample) {
		return Amplitude{Degenerate: true}
	}

	v := sample / peak
	if !finite(v) {
		return Amplitude{Degenerate: true}
	}

	return Amplitude{Value: v}
}

// Float is the usable value: 0 when degenerate.
func (a Amplitude) Float() float64 {
	if a.Degenerate {
		return 0
	}

	return a.Value
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Extract drains src and computes its envelope. src is not closed.
func Extract(src audio.Source, numPoints int) (Result, error) {
	if numPoints <= 0 {
		return Result{}, ErrInvalidPoints
	}

	buf, err := audio.ReadAll(src)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	return FromBuffer(buf, numPoints)
}

// FromBuffer computes the envelope of an already decoded clip.
func FromBuffer(buf *audio.Buffer, numPoints int) (Result, error) {
	if numPoints <= 0 {
		return Result{}, ErrInvalidPoints
	}

	if err := buf.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	samples, err := mono(buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	return Result{
		Waveform: envelope(samples, numPoints),
		Duration: buf.Seconds(),
	}, nil
}

func mono(buf *audio.Buffer) ([]float32, error) {
	if buf.Channels == 1 {
		return buf.Data, nil
	}

	mixed, err := audio.ReadAll(audio.NewMonoMixer(buf.Source()))
	if err != nil {
		return nil, err
	}

	return mixed.Data, nil
}

func absPeak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		a := math.Abs(float64(s))
		if a > peak {
			peak = a
		}
	}

	return peak
}

// envelope buckets samples into numPoints slots of floor(len/numPoints)
// samples each. Clips shorter than numPoints samples produce all zeros.
func envelope(samples []float32, numPoints int) []float64 {
	out := make([]float64, numPoints)

	peak := absPeak(samples)
	if peak == 0 {
		return out
	}

	count := len(samples)
	size := count / numPoints

	for i := range numPoints {
		start := i * size
		end := min((i+1)*size, count)
		if start >= end {
			continue
		}

		v := Normalize(absPeak(samples[start:end]), peak).Float()
		out[i] = min(max(v, 0), 1)
	}

	return out
}
