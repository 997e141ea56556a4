// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/utils"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte

	// odd trailing byte from the previous Read
	pending    byte
	hasPending bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	off := 0
	if s.hasPending {
		s.buf[0] = s.pending
		s.hasPending = false
		off = 1
	}

	n, err := s.dec.Read(s.buf[off:])
	n += off

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[i*2:])))
	}

	if n%bytesPerSample != 0 {
		s.pending = s.buf[n-1]
		s.hasPending = true
	}

	switch {
	case err == io.EOF:
		if samples == 0 {
			return 0, io.EOF
		}

		return samples, nil
	case err != nil:
		return samples, fmt.Errorf("decoding mp3: %w", err)
	}

	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams. Output is always stereo;
// mono files are duplicated onto both channels.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
