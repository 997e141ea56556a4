// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The decoder always reports two channels, since go-mp3 expands mono
// streams to stereo. Samples are float32 in [-1.0, 1.0]:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	buf, err := audio.ReadAll(src)
//
// Encoding MP3 is not done here; the transcode package hands that to ffmpeg.
package mp3
