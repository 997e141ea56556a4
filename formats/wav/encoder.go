// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audedit/audio"
)

// Encoder writes 16-bit PCM WAV. Seekable writers go through go-audio's
// encoder; anything else gets a canonical header from WriteWAV16.
type Encoder struct{}

func (Encoder) Encode(w io.Writer, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	ws, ok := w.(io.WriteSeeker)
	if !ok {
		return WriteWAV16(w, buf.SampleRate, buf.Channels, buf.Int16())
	}

	pcm := buf.Int16()
	ints := make([]int, len(pcm))
	for i, v := range pcm {
		ints[i] = int(v)
	}

	enc := wav.NewEncoder(ws, buf.SampleRate, 16, buf.Channels, formatPCM)
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}

// WriteWAV16 writes interleaved 16-bit PCM behind a canonical 44-byte header.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if sampleRate <= 0 || channels <= 0 {
		return audio.ErrInvalidFormat
	}

	const bitsPerSample = 16
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)
	dataSize := uint32(len(samples) * 2)

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}

	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		out := buf[:len(chunk)*2]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[j*2:], uint16(s))
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
	}

	return nil
}
