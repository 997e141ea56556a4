// SPDX-License-Identifier: EPL-2.0

// Package transcode covers containers without a native Go codec by passing
// them through an external transcoder (ffmpeg) and 16-bit WAV.
//
// Decoding writes the input to a temporary file, converts it to WAV and
// decodes that with the wav package. Encoding does the reverse. Temporary
// files are removed before the call returns.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/formats/wav"
)

// Transcoder converts the file in to out, as ffmpeg.Runner does.
type Transcoder interface {
	Transcode(ctx context.Context, in, out string, extra ...string) error
}

// CodecArgs returns the encoder arguments used for format.
func CodecArgs(format string) []string {
	switch audio.FormatKey(format) {
	case "mp3":
		return []string{"-c:a", "libmp3lame", "-q:a", "2"}
	case "ogg", "oga":
		return []string{"-c:a", "libvorbis", "-q:a", "5"}
	case "m4a", "aac", "mp4":
		return []string{"-c:a", "aac", "-b:a", "192k"}
	case "flac":
		return []string{"-c:a", "flac"}
	default:
		return nil
	}
}

// Decoder decodes Format through FFmpeg.
type Decoder struct {
	FFmpeg Transcoder
	Format string
	// Dir holds temporary files, os.TempDir when empty.
	Dir string
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeContext(context.Background(), r)
}

// DecodeContext is Decode with the transcoder bound to ctx.
func (d Decoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	tmp, err := os.MkdirTemp(d.Dir, "audedit-decode-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "in."+audio.FormatKey(d.Format))
	if err := writeFile(in, r); err != nil {
		return nil, err
	}

	out := filepath.Join(tmp, "out.wav")
	if err := d.FFmpeg.Transcode(ctx, in, out, "-vn", "-c:a", "pcm_s16le"); err != nil {
		return nil, fmt.Errorf("transcoding %s to wav: %w", d.Format, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("reading transcoded wav: %w", err)
	}

	return wav.Decoder{}.Decode(bytes.NewReader(data))
}

// Encoder encodes to Format through FFmpeg. Args overrides CodecArgs.
type Encoder struct {
	FFmpeg Transcoder
	Format string
	Args   []string
	// Dir holds temporary files, os.TempDir when empty.
	Dir string
}

func (e Encoder) Encode(w io.Writer, buf *audio.Buffer) error {
	return e.EncodeContext(context.Background(), w, buf)
}

// EncodeContext is Encode with the transcoder bound to ctx.
func (e Encoder) EncodeContext(ctx context.Context, w io.Writer, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	tmp, err := os.MkdirTemp(e.Dir, "audedit-encode-")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "in.wav")
	f, err := os.Create(in)
	if err != nil {
		return fmt.Errorf("creating temp wav: %w", err)
	}
	if err := (wav.Encoder{}).Encode(f, buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp wav: %w", err)
	}

	args := e.Args
	if args == nil {
		args = CodecArgs(e.Format)
	}

	out := filepath.Join(tmp, "out."+audio.FormatKey(e.Format))
	if err := e.FFmpeg.Transcode(ctx, in, out, args...); err != nil {
		return fmt.Errorf("transcoding wav to %s: %w", e.Format, err)
	}

	encoded, err := os.Open(out)
	if err != nil {
		return fmt.Errorf("opening transcoded file: %w", err)
	}
	defer encoded.Close()

	if _, err := io.Copy(w, encoded); err != nil {
		return fmt.Errorf("copying transcoded file: %w", err)
	}

	return nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return nil
}
