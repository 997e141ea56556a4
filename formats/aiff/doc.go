// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF decoding and encoding on top of
// github.com/go-audio/aiff.
//
// The decoder accepts signed PCM at 8, 16, 24 and 32 bits. go-audio needs an
// io.ReadSeeker, so plain readers are buffered in memory first:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not AIFF
//	}
//
// The encoder writes 16-bit PCM. Chunk sizes are patched after the samples
// are written, so non-seekable writers are staged in memory:
//
//	err := aiff.Encoder{}.Encode(out, buf)
package aiff
