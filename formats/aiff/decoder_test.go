// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audedit/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	err        error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not AIFF data")},
		{"empty", nil},
		{"wav header", []byte("RIFF\x24\x00\x00\x00WAVEfmt ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		value    int
		want     float32
	}{
		{8, 64, 0.5},
		{8, -128, -1},
		{16, 16384, 0.5},
		{24, -4194304, -0.5},
		{32, 1 << 30, 0.5},
	}

	for _, tt := range tests {
		s := &source{
			dec:        &mockAiffReader{sampleRate: 8000, channels: 1, samples: []int{tt.value}},
			sampleRate: 8000,
			channels:   1,
			bitDepth:   tt.bitDepth,
		}

		dst := make([]float32, 4)
		n, err := s.ReadSamples(dst)
		if err != nil || n != 1 {
			t.Fatalf("ReadSamples() = %d, %v; want 1, nil", n, err)
		}
		if dst[0] != tt.want {
			t.Errorf("%d-bit %d = %v, want %v", tt.bitDepth, tt.value, dst[0], tt.want)
		}
	}
}

func TestSource_ReadAll(t *testing.T) {
	t.Parallel()

	samples := make([]int, 10000)
	for i := range samples {
		samples[i] = i%2000 - 1000
	}

	s := &source{
		dec:        &mockAiffReader{sampleRate: 22050, channels: 2, samples: samples},
		sampleRate: 22050,
		channels:   2,
		bitDepth:   16,
	}

	buf, err := audio.ReadAll(s)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.Frames() != 5000 {
		t.Errorf("Frames() = %d, want 5000", buf.Frames())
	}
	if s.BufSize() < 4096 {
		t.Errorf("BufSize() = %d, want at least 4096", s.BufSize())
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockAiffReader{err: io.ErrUnexpectedEOF}, sampleRate: 8000, channels: 1, bitDepth: 16}
	if _, err := s.ReadSamples(make([]float32, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}

	s = &source{dec: &mockAiffReader{}, sampleRate: 8000, channels: 1, bitDepth: 16}
	if n, err := s.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v; want 0, io.EOF", n, err)
	}
	if n, err := s.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestErrors_Distinct(t *testing.T) {
	t.Parallel()

	errs := []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout}
	for i := range errs {
		for j := range errs {
			if i != j && errors.Is(errs[i], errs[j]) {
				t.Errorf("%v matches %v", errs[i], errs[j])
			}
		}
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 44100*2)
	dst := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		s := &source{
			dec:        &mockAiffReader{sampleRate: 44100, channels: 2, samples: samples},
			sampleRate: 44100,
			channels:   2,
			bitDepth:   16,
		}
		for {
			if _, err := s.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
