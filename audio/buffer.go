// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audedit/utils"
)

// Buffer is a fully decoded PCM stream held in memory.
// Data is interleaved float32 in [-1,1], len(Data) is a multiple of Channels.
type Buffer struct {
	SampleRate int
	Channels   int
	Data       []float32
}

func NewBuffer(sampleRate, channels int, data []float32) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       data,
	}
}

// Validate reports ErrInvalidFormat for a buffer without a usable layout.
func (b *Buffer) Validate() error {
	if b == nil || b.SampleRate <= 0 || b.Channels <= 0 {
		return ErrInvalidFormat
	}

	return nil
}

// Frames is the number of complete multi-channel frames in the buffer.
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}

	return len(b.Data) / b.Channels
}

// Seconds is the playback length of the buffer.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Frames()) / float64(b.SampleRate)
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Clone returns a deep copy, so the result never shares Data with b.
func (b *Buffer) Clone() *Buffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)

	return NewBuffer(b.SampleRate, b.Channels, data)
}

// Slice copies the frames in [start, end), clamped to the buffer bounds.
// An empty range yields an empty buffer with the same layout.
func (b *Buffer) Slice(start, end int) *Buffer {
	frames := b.Frames()
	start = min(max(start, 0), frames)
	end = min(max(end, 0), frames)

	if start >= end {
		return NewBuffer(b.SampleRate, b.Channels, []float32{})
	}

	data := make([]float32, (end-start)*b.Channels)
	copy(data, b.Data[start*b.Channels:end*b.Channels])

	return NewBuffer(b.SampleRate, b.Channels, data)
}

// Int16 converts the buffer to interleaved 16-bit PCM.
func (b *Buffer) Int16() []int16 {
	pcm := make([]int16, len(b.Data))
	for i, x := range b.Data {
		pcm[i] = utils.Float32ToInt16(x)
	}

	return pcm
}

// Source streams the buffer through the Source interface without copying it.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Data) {
		return 0, io.EOF
	}

	// Only hand out whole frames so downstream mixers stay aligned
	n := len(dst)
	if s.buf.Channels > 1 {
		n -= n % s.buf.Channels
	}
	if n == 0 {
		return 0, nil
	}

	n = copy(dst[:n], s.buf.Data[s.pos:])
	s.pos += n

	return n, nil
}

const maxEmptyReads = 100

// ReadAll drains src into a Buffer. The source is not closed.
func ReadAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return nil, ErrInvalidFormat
	}

	size := max(src.BufSize(), 4096)
	size -= size % channels

	buf := make([]float32, size)
	data := make([]float32, 0, size)
	empty := 0

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			empty = 0
		} else if err == nil {
			empty++
			if empty > maxEmptyReads {
				return nil, fmt.Errorf("reading samples: %w", io.ErrNoProgress)
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
	}

	// Drop a trailing partial frame
	data = data[:len(data)-len(data)%channels]

	return NewBuffer(rate, channels, data), nil
}
