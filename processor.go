// SPDX-License-Identifier: EPL-2.0

package audedit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/edit"
	"github.com/ik5/audedit/formats/aiff"
	"github.com/ik5/audedit/formats/mp3"
	"github.com/ik5/audedit/formats/transcode"
	"github.com/ik5/audedit/formats/vorbis"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/internal/ffmpeg"
	"github.com/ik5/audedit/waveform"
)

// Options configures a Processor. The zero value works without ffmpeg:
// wav and aiff only, with the native echo.
type Options struct {
	// FFmpeg enables mp3, ogg and m4a output, m4a input and the ffmpeg echo.
	FFmpeg *ffmpeg.Runner
	// Echo overrides the reverb implementation.
	Echo edit.EchoApplier
	// Registry overrides DefaultRegistry.
	Registry *audio.Registry
	// Points is the envelope length for Waveform, waveform.DefaultPoints when 0.
	Points int
	// TempDir holds intermediate files, os.TempDir when empty.
	TempDir string
}

// Processor edits and measures audio files on disk.
type Processor struct {
	registry *audio.Registry
	engine   *edit.Engine
	points   int
}

// DefaultRegistry registers every native codec, plus the ffmpeg-backed
// ones when runner is not nil.
func DefaultRegistry(runner *ffmpeg.Runner, tempDir string) *audio.Registry {
	r := audio.NewRegistry()

	r.Register("wav", wav.Decoder{})
	r.RegisterEncoder("wav", wav.Encoder{})
	for _, ext := range []string{"aiff", "aif"} {
		r.Register(ext, aiff.Decoder{})
		r.RegisterEncoder(ext, aiff.Encoder{})
	}
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})

	if runner == nil {
		return r
	}

	r.Register("m4a", transcode.Decoder{FFmpeg: runner, Format: "m4a", Dir: tempDir})
	for _, ext := range []string{"mp3", "ogg", "m4a"} {
		r.RegisterEncoder(ext, transcode.Encoder{FFmpeg: runner, Format: ext, Dir: tempDir})
	}

	return r
}

func NewProcessor(opts Options) *Processor {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry(opts.FFmpeg, opts.TempDir)
	}

	echo := opts.Echo
	if echo == nil && opts.FFmpeg != nil {
		echo = edit.FFmpegEcho{FFmpeg: opts.FFmpeg, Dir: opts.TempDir}
	}

	points := opts.Points
	if points <= 0 {
		points = waveform.DefaultPoints
	}

	return &Processor{
		registry: registry,
		engine:   edit.NewEngine(echo),
		points:   points,
	}
}

// FormatOf returns the registry key for path, its lowercased extension.
func FormatOf(path string) string {
	return audio.FormatKey(filepath.Ext(path))
}

// Formats lists the formats that can be both read and written.
func (p *Processor) Formats() []string {
	return p.registry.Formats()
}

// Supports reports whether files in format can be edited in place.
func (p *Processor) Supports(format string) bool {
	_, dec := p.registry.Get(format)
	_, enc := p.registry.GetEncoder(format)

	return dec && enc
}

// Points is the envelope length used by Waveform.
func (p *Processor) Points() int { return p.points }

// Decode reads the whole file at path.
func (p *Processor) Decode(path string) (*audio.Buffer, error) {
	return p.DecodeContext(context.Background(), path)
}

// DecodeContext is Decode with external transcoding bound to ctx.
func (p *Processor) DecodeContext(ctx context.Context, path string) (*audio.Buffer, error) {
	format := FormatOf(path)
	dec, ok := p.registry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	src, err := audio.DecodeContext(ctx, dec, f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	defer src.Close()

	return audio.ReadAll(src)
}

// Encode writes buf to path in the container named by its extension.
// Nothing is left at path on failure.
func (p *Processor) Encode(path string, buf *audio.Buffer) error {
	return p.EncodeContext(context.Background(), path, buf)
}

// EncodeContext is Encode with external transcoding bound to ctx.
func (p *Processor) EncodeContext(ctx context.Context, path string, buf *audio.Buffer) (err error) {
	format := FormatOf(path)
	enc, ok := p.registry.GetEncoder(format)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := audio.EncodeContext(ctx, enc, f, buf); err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	return nil
}

// EditFile applies one edit to the file at path and writes the result next
// to it as <uuid>.<ext>, in the same container format. The input file is
// left alone; the caller decides what replaces what. On error no output
// file exists.
func (p *Processor) EditFile(ctx context.Context, path string, kind edit.Kind, params edit.Params) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", edit.ErrUnsupportedKind, kind)
	}

	format := FormatOf(path)
	if !p.Supports(format) {
		return "", fmt.Errorf("%w: %w: %q", edit.ErrProcessingFailed, ErrUnsupportedFormat, format)
	}

	buf, err := p.DecodeContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", edit.ErrProcessingFailed, err)
	}

	out, err := p.engine.Apply(ctx, buf, kind, params)
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(filepath.Dir(path), uuid.NewString()+"."+format)
	if err := p.EncodeContext(ctx, outPath, out); err != nil {
		return "", fmt.Errorf("%w: %w", edit.ErrProcessingFailed, err)
	}

	return outPath, nil
}

// WaveformFile extracts a numPoints envelope from the file at path.
func (p *Processor) WaveformFile(path string, numPoints int) (waveform.Result, error) {
	return p.WaveformFileContext(context.Background(), path, numPoints)
}

// WaveformFileContext is WaveformFile with external transcoding bound to ctx.
func (p *Processor) WaveformFileContext(ctx context.Context, path string, numPoints int) (waveform.Result, error) {
	if numPoints <= 0 {
		return waveform.Result{}, waveform.ErrInvalidPoints
	}

	buf, err := p.DecodeContext(ctx, path)
	if err != nil {
		return waveform.Result{}, fmt.Errorf("%w: %w", waveform.ErrExtractionFailed, err)
	}

	res, err := waveform.FromBuffer(buf, numPoints)
	if err != nil && !errors.Is(err, waveform.ErrExtractionFailed) {
		err = fmt.Errorf("%w: %w", waveform.ErrExtractionFailed, err)
	}

	return res, err
}

// Waveform extracts the envelope with the configured number of points.
func (p *Processor) Waveform(path string) (waveform.Result, error) {
	return p.WaveformFile(path, p.points)
}

// WaveformContext is Waveform with external transcoding bound to ctx.
func (p *Processor) WaveformContext(ctx context.Context, path string) (waveform.Result, error) {
	return p.WaveformFileContext(ctx, path, p.points)
}
