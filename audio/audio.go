// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Encoder writes a decoded Buffer to w in a container format.
type Encoder interface {
	Encode(w io.Writer, buf *Buffer) error
}

// ContextDecoder is a Decoder whose work can be cancelled, such as one
// that runs an external process.
type ContextDecoder interface {
	DecodeContext(ctx context.Context, r io.Reader) (Source, error)
}

// ContextEncoder is the cancellable counterpart of Encoder.
type ContextEncoder interface {
	EncodeContext(ctx context.Context, w io.Writer, buf *Buffer) error
}

// DecodeContext decodes r with d, passing ctx on when d supports it.
func DecodeContext(ctx context.Context, d Decoder, r io.Reader) (Source, error) {
	if cd, ok := d.(ContextDecoder); ok {
		return cd.DecodeContext(ctx, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return d.Decode(r)
}

// EncodeContext encodes buf with e, passing ctx on when e supports it.
func EncodeContext(ctx context.Context, e Encoder, w io.Writer, buf *Buffer) error {
	if ce, ok := e.(ContextEncoder); ok {
		return ce.EncodeContext(ctx, w, buf)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.Encode(w, buf)
}

// Registry for decoders and encoders by format key (e.g., "wav", "mp3", "ogg").
// Keys are case-insensitive and a leading dot is ignored, so a file
// extension can be used directly.
type Registry struct {
	decoders map[string]Decoder
	encoders map[string]Encoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]Decoder),
		encoders: make(map[string]Encoder),
		mtx:      &sync.Mutex{},
	}
}

// FormatKey normalizes a format name or file extension into a registry key.
func FormatKey(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.decoders[FormatKey(format)] = d
}

func (r *Registry) RegisterEncoder(format string, e Encoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.encoders[FormatKey(format)] = e
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.decoders[FormatKey(format)]
	return d, ok
}

func (r *Registry) GetEncoder(format string) (Encoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.encoders[FormatKey(format)]
	return e, ok
}

// Formats lists, sorted, the formats that can be both decoded and encoded.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	formats := make([]string, 0, len(r.decoders))
	for f := range r.decoders {
		if _, ok := r.encoders[f]; ok {
			formats = append(formats, f)
		}
	}
	slices.Sort(formats)

	return formats
}
