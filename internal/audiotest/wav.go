// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"
)

// WAV16 builds a canonical 44-byte-header PCM 16-bit WAV file.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// Tone returns frames of interleaved 16-bit PCM holding a sine at freq Hz
// with the given peak amplitude in [0,1], identical on every channel.
func Tone(sampleRate, channels, frames int, freq, amplitude float64) []int16 {
	pcm := make([]int16, frames*channels)
	for f := range frames {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(f)/float64(sampleRate))
		for c := range channels {
			pcm[f*channels+c] = int16(v * 32767)
		}
	}

	return pcm
}

// Silence returns frames of zeroed interleaved 16-bit PCM.
func Silence(channels, frames int) []int16 {
	return make([]int16, frames*channels)
}

// WriteWAV16 writes a canonical WAV file at path, failing the test on error.
func WriteWAV16(tb testing.TB, path string, sampleRate, channels int, samples []int16) {
	tb.Helper()

	if err := os.WriteFile(path, WAV16(sampleRate, channels, samples), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
}
