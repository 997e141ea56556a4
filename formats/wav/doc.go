// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV decoding and encoding.
//
// Decoding goes through github.com/go-audio/wav, so files with extra chunks
// between fmt and data (as written by ffmpeg and most editors) are accepted.
// Integer PCM at 8, 16, 24 and 32 bits is supported, including
// WAVE_FORMAT_EXTENSIBLE headers. IEEE float WAV is rejected with
// ErrOnlyPCMSupported.
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf, err := audio.ReadAll(src)
//
// Encoding always produces 16-bit PCM:
//
//	err := wav.Encoder{}.Encode(out, buf)
//
// WriteWAV16 writes raw int16 samples behind a canonical 44-byte header and
// works on any io.Writer.
package wav
