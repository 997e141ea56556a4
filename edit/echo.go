// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/formats/wav"
	"github.com/ik5/audedit/utils"
)

const (
	echoInGain = 0.8
	echoDelayS = 1.0
)

// EchoApplier produces the reverb effect: the input plus a single tap one
// second later, attenuated by damping, with roomScale as output gain.
type EchoApplier interface {
	ApplyEcho(ctx context.Context, buf *audio.Buffer, roomScale, damping float64) (*audio.Buffer, error)
}

// DecayEcho computes the echo in process, matching ffmpeg's aecho:
//
//	y[n] = (0.8*x[n] + damping*x[n-d]) * roomScale
//
// with d one second of frames. The output is extended by d frames so the
// tail rings out, and clipped to [-1,1].
type DecayEcho struct{}

func (DecayEcho) ApplyEcho(ctx context.Context, buf *audio.Buffer, roomScale, damping float64) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := buf.Channels
	frames := buf.Frames()
	if frames == 0 {
		return audio.NewBuffer(buf.SampleRate, ch, []float32{}), nil
	}

	delay := int(echoDelayS * float64(buf.SampleRate))
	in := float32(echoInGain)
	tap := float32(damping)
	gain := float32(roomScale)

	out := make([]float32, (frames+delay)*ch)
	for f := range frames + delay {
		for c := range ch {
			var dry, wet float32
			if f < frames {
				dry = buf.Data[f*ch+c]
			}
			if f >= delay && f-delay < frames {
				wet = buf.Data[(f-delay)*ch+c]
			}

			out[f*ch+c] = utils.ClampUnit((in*dry + tap*wet) * gain)
		}
	}

	return audio.NewBuffer(buf.SampleRate, ch, out), nil
}

// Echoer runs the external echo filter from in to out, as ffmpeg.Runner does.
type Echoer interface {
	Echo(ctx context.Context, in, out string, roomScale, damping float64) error
}

// FFmpegEcho writes the buffer to a temporary WAV, filters it through
// FFmpeg and decodes the result. Temporary files never outlive the call.
type FFmpegEcho struct {
	FFmpeg Echoer
	// Dir holds temporary files, os.TempDir when empty.
	Dir string
}

func (e FFmpegEcho) ApplyEcho(ctx context.Context, buf *audio.Buffer, roomScale, damping float64) (*audio.Buffer, error) {
	tmp, err := os.MkdirTemp(e.Dir, "audedit-echo-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "in.wav")
	out := filepath.Join(tmp, "out.wav")

	f, err := os.Create(in)
	if err != nil {
		return nil, fmt.Errorf("creating temp wav: %w", err)
	}
	if err := (wav.Encoder{}).Encode(f, buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing temp wav: %w", err)
	}

	if err := e.FFmpeg.Echo(ctx, in, out, roomScale, damping); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("reading echo output: %w", err)
	}

	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding echo output: %w", err)
	}
	defer src.Close()

	return audio.ReadAll(src)
}
