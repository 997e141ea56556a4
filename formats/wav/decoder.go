// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of wav.Decoder used by source, mockable in tests.
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}

	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading wav pcm: %w", err)
		}

		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned around 128
			v -= 128
		}
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("reading wav pcm: %w", err)
	}

	return n, nil
}

// emptyPCM reports a well-formed header whose data chunk holds no frames.
// go-audio treats a zero duration as invalid, but trims can produce one.
func emptyPCM(dec *wav.Decoder) bool {
	return dec.Err() == nil && dec.NumChans > 0 && dec.BitDepth >= 8 && dec.SampleRate > 0
}

// Decoder reads RIFF/WAVE files holding integer PCM at 8, 16, 24 or 32 bits.
// Extra chunks (LIST, fact, ...) ahead of the data chunk are skipped.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() && !emptyPCM(dec) {
		return nil, ErrNotWavFile
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
	}, nil
}
