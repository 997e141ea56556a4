// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level audio primitives used by the editor.
//
// This package contains the core building blocks:
//   - Source interface for streamed PCM input
//   - Decoder and Encoder interfaces plus a format Registry
//   - Buffer, a fully decoded clip held in memory
//   - Resampler for sample rate conversion and speed changes
//   - MonoMixer for channel downmixing
//
// # Source Interface
//
// All decoders and processors implement Source, so they can be chained:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// # Buffers
//
// Edits work on whole clips. ReadAll drains a Source into a Buffer and
// Buffer.Source streams it back out:
//
//	buf, err := audio.ReadAll(src)
//	clip := buf.Slice(0, buf.SampleRate) // first second
//
// # Speed Changes
//
// NewSpeedResampler keeps the sample rate and consumes factor source frames
// per output frame, so a factor of 2 halves the duration (and raises pitch):
//
//	fast, err := audio.NewSpeedResampler(buf.Source(), 2.0)
//	out, err := audio.ReadAll(fast)
//
// # Format Registry
//
// Keys are file extensions, case-insensitive, with or without the dot:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	registry.RegisterEncoder("wav", wav.Encoder{})
//	decoder, ok := registry.Get(filepath.Ext(path))
//
// # Sample Format
//
// Audio samples are float32 in the range [-1.0, 1.0], interleaved by channel.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available; other errors
// come from the underlying decoder and are wrapped with %w.
package audio
