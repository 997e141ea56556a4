// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The channel count and sample rate come from the stream header and
// samples are float32 in [-1.0, 1.0], interleaved:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	buf, err := audio.ReadAll(src)
//
// Files registered under the "ogg" extension are decoded here; encoding is
// handled by ffmpeg through the transcode package.
package vorbis
