// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg runs the ffmpeg command-line tool for transcoding and
// filtering audio files.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audedit/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBinary  = "ffmpeg"
	DefaultTimeout = 2 * time.Minute

	// stderr kept on failure
	stderrLimit = 4 << 10

	// how long to wait for pipes after the process is killed
	waitDelay = 2 * time.Second
)

var ErrNotFound = errors.New("ffmpeg binary not found")

// baseArgs precede every invocation: quiet, non-interactive, overwrite.
var baseArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}

// Error reports a failed ffmpeg run.
type Error struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with status %d", e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil && e.ExitCode < 0 {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Runner invokes one ffmpeg binary. The zero value uses DefaultBinary
// from PATH with DefaultTimeout.
type Runner struct {
	Binary  string
	Timeout time.Duration
	Log     *logrus.Entry
}

func New(binary string, timeout time.Duration, log *logrus.Entry) *Runner {
	return &Runner{
		Binary:  binary,
		Timeout: timeout,
		Log:     log,
	}
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}

	return r.Binary
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}

	return r.Timeout
}

// Available reports whether the binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Run executes ffmpeg with args after the standard flags. The process is
// killed when ctx ends or the runner timeout expires.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	bin, err := exec.LookPath(r.binary())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, r.binary())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	full := append(append([]string{}, baseArgs...), args...)
	cmd := exec.CommandContext(ctx, bin, full...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log := logging.OrDiscard(r.Log).WithFields(logrus.Fields{
		"binary": bin,
		"args":   strings.Join(args, " "),
	})

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		log.WithField("elapsed", elapsed).Debug("ffmpeg finished")
		return nil
	}

	ferr := &Error{
		Args:     full,
		ExitCode: -1,
		Stderr:   tail(stderr.String(), stderrLimit),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ferr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		ferr.Err = ctxErr
		ferr.ExitCode = -1
	}

	log.WithFields(logrus.Fields{
		"elapsed": elapsed,
		"status":  ferr.ExitCode,
		"stderr":  ferr.Stderr,
	}).Warn("ffmpeg failed")

	return ferr
}

// Transcode converts in to out. The output container follows the out
// extension unless extra overrides it.
func (r *Runner) Transcode(ctx context.Context, in, out string, extra ...string) error {
	args := append([]string{"-i", in}, extra...)
	args = append(args, out)

	return r.Run(ctx, args...)
}

// Echo applies EchoFilter to in and writes out.
func (r *Runner) Echo(ctx context.Context, in, out string, roomScale, damping float64) error {
	return r.Transcode(ctx, in, out, "-af", EchoFilter(roomScale, damping))
}

// EchoFilter is a 1 s single-tap aecho: in gain 0.8, out gain roomScale,
// decay damping.
func EchoFilter(roomScale, damping float64) string {
	return "aecho=0.8:" + formatFloat(roomScale) + ":1000:" + formatFloat(damping)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}

	return s[len(s)-limit:]
}
