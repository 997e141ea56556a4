// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"context"
	"fmt"
	"math"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/utils"
)

// Defaults applied when a parameter is absent.
const (
	DefaultSpeed     = 1.0
	DefaultRoomScale = 0.5
	DefaultDamping   = 0.5
	DefaultVolumeDB  = 0.0
)

// Accepted speed_factor range. The output of a speed edit holds
// frames/speed_factor frames, so the lower bound caps its size at four
// times the input.
const (
	MinSpeed = 0.25
	MaxSpeed = 4.0
)

// Engine applies one edit to a decoded buffer. It keeps no state between
// calls and is safe for concurrent use when its EchoApplier is.
type Engine struct {
	echo EchoApplier
}

// NewEngine returns an engine using echo for reverb, DecayEcho when nil.
func NewEngine(echo EchoApplier) *Engine {
	if echo == nil {
		echo = DecayEcho{}
	}

	return &Engine{echo: echo}
}

// Apply returns a new buffer holding buf transformed by kind. buf is never
// modified. Bad kinds and parameters fail with ErrInvalidParameters before
// any processing; failures during processing wrap ErrProcessingFailed.
func (e *Engine) Apply(ctx context.Context, buf *audio.Buffer, kind Kind, params Params) (*audio.Buffer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	switch kind {
	case Trim:
		return e.trim(buf, params)
	case Speed:
		return e.speed(buf, params)
	case Reverb:
		return e.reverb(ctx, buf, params)
	default:
		return e.volume(buf, params)
	}
}

// msToFrame converts a millisecond offset to the nearest frame index.
func msToFrame(ms float64, sampleRate int) int {
	return int(math.Round(ms * float64(sampleRate) / 1000))
}

func (e *Engine) trim(buf *audio.Buffer, params Params) (*audio.Buffer, error) {
	lengthMS := buf.Seconds() * 1000

	startMS, err := params.Float(ParamStartMS, 0)
	if err != nil {
		return nil, err
	}

	endMS, err := params.Float(ParamEndMS, lengthMS)
	if err != nil {
		return nil, err
	}

	// Slice clamps to the buffer and yields an empty buffer for start >= end
	return buf.Slice(msToFrame(startMS, buf.SampleRate), msToFrame(endMS, buf.SampleRate)), nil
}

func (e *Engine) speed(buf *audio.Buffer, params Params) (*audio.Buffer, error) {
	factor, err := params.Float(ParamSpeed, DefaultSpeed)
	if err != nil {
		return nil, err
	}

	if factor < MinSpeed || factor > MaxSpeed {
		return nil, fmt.Errorf("%w: %s must be within [%v, %v], got %v",
			ErrInvalidParameters, ParamSpeed, MinSpeed, MaxSpeed, factor)
	}

	if factor == 1 {
		return buf.Clone(), nil
	}

	r, err := audio.NewSpeedResampler(buf.Source(), factor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	defer r.Close()

	out, err := audio.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	return out, nil
}

func (e *Engine) reverb(ctx context.Context, buf *audio.Buffer, params Params) (*audio.Buffer, error) {
	roomScale, err := params.Float(ParamRoomScale, DefaultRoomScale)
	if err != nil {
		return nil, err
	}

	damping, err := params.Float(ParamDamping, DefaultDamping)
	if err != nil {
		return nil, err
	}

	out, err := e.echo.ApplyEcho(ctx, buf, roomScale, damping)
	if err != nil {
		return nil, fmt.Errorf("%w: reverb: %w", ErrProcessingFailed, err)
	}

	return out, nil
}

func (e *Engine) volume(buf *audio.Buffer, params Params) (*audio.Buffer, error) {
	db, err := params.Float(ParamVolumeDB, DefaultVolumeDB)
	if err != nil {
		return nil, err
	}

	out := buf.Clone()
	if db == 0 {
		return out, nil
	}

	gain := float32(utils.DBToGain(db))
	for i, x := range out.Data {
		out.Data[i] = utils.ClampUnit(x * gain)
	}

	return out, nil
}
