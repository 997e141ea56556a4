// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audedit/utils"
)

// Resampler streams from src at a new rate using cubic interpolation.
// Works on interleaved samples and preserves the channel count.
// A one-pole low-pass runs on the input whenever it is consumed faster
// than one source frame per output frame.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool

	// Fractional position between frames[1] and frames[2]
	pos float64

	srcBuf []float32
	eof    bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

// NewResampler converts src to dstRate Hz. Playback duration is preserved.
func NewResampler(src Source, dstRate int) *Resampler {
	return newResampler(src, dstRate, float64(src.SampleRate())/float64(dstRate))
}

// NewSpeedResampler plays src back factor times faster while keeping its
// sample rate, so the duration scales by 1/factor and the pitch shifts with it.
func NewSpeedResampler(src Source, factor float64) (*Resampler, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, ErrInvalidSpeed
	}

	return newResampler(src, src.SampleRate(), factor), nil
}

func newResampler(src Source, dstRate int, ratio float64) *Resampler {
	channels := src.Channels()

	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		filterAlpha = 0.5
	}

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, max(channels, 1)),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// readFrame reads one frame into dst. It reports whether a frame was read.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for tries := 0; tries < maxEmptyReads; tries++ {
		n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
		if n > 0 {
			copy(dst, r.srcBuf[:n])
			return true, err
		}
		if err != nil {
			return false, err
		}
	}

	return false, io.ErrNoProgress
}

func (r *Resampler) lowPass(frame []float32) {
	if !r.useFilter {
		return
	}

	for c := range r.channels {
		frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

// fetchNextFrame shifts the window by one frame.
func (r *Resampler) fetchNextFrame() error {
	if r.eof {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]

	ok, err := r.readFrame(r.frames[3])
	r.hasFrame[3] = ok
	if ok {
		r.lowPass(r.frames[3])
	}

	if err == io.EOF {
		r.eof = true
		if !ok {
			return io.EOF
		}
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (r *Resampler) fill() error {
	for i := range 4 {
		ok, err := r.readFrame(r.frames[i])
		if ok {
			r.hasFrame[i] = true
			if i == 0 && r.useFilter {
				// Seed the filter to avoid a warm-up transient
				copy(r.filterState, r.frames[0])
			}
			r.lowPass(r.frames[i])
		}

		if err == io.EOF {
			r.eof = true
			last := i
			if ok {
				last = i + 1
			}
			if last == 0 {
				return io.EOF
			}
			for j := last; j < 4; j++ {
				copy(r.frames[j], r.frames[last-1])
				r.hasFrame[j] = true
			}

			return nil
		}

		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// ReadSamples produces interleaved samples at the output rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.hasFrame[1] {
		if r.eof {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.fetchNextFrame(); err != nil {
				if err == io.EOF {
					return written * r.channels, io.EOF
				}

				return written * r.channels, err
			}
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y0 := r.frames[1][c]
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}

			y3 := r.frames[2][c]
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.frames[1][c], r.frames[2][c], y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
