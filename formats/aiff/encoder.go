// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audedit/audio"
)

// Encoder writes 16-bit big-endian PCM AIFF.
type Encoder struct{}

func (Encoder) Encode(w io.Writer, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	// go-audio patches chunk sizes on Close, so it needs to seek
	ws, ok := w.(io.WriteSeeker)
	var mem *writeSeeker
	if !ok {
		mem = &writeSeeker{}
		ws = mem
	}

	pcm := buf.Int16()
	ints := make([]int, len(pcm))
	for i, v := range pcm {
		ints[i] = int(v)
	}

	enc := aiff.NewEncoder(ws, buf.SampleRate, 16, buf.Channels)
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("writing aiff: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing aiff: %w", err)
	}

	if mem != nil {
		if _, err := w.Write(mem.data); err != nil {
			return fmt.Errorf("writing aiff: %w", err)
		}
	}

	return nil
}

// writeSeeker implements io.WriteSeeker for in-memory data
type writeSeeker struct {
	data   []byte
	offset int64
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	end := ws.offset + int64(len(p))
	if end > int64(len(ws.data)) {
		ws.data = append(ws.data, make([]byte, end-int64(len(ws.data)))...)
	}

	copy(ws.data[ws.offset:end], p)
	ws.offset = end

	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = ws.offset + offset
	case io.SeekEnd:
		next = int64(len(ws.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if next < 0 {
		return 0, fmt.Errorf("negative position")
	}

	ws.offset = next
	return next, nil
}
