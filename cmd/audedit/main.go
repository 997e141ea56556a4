// SPDX-License-Identifier: EPL-2.0

// Command audedit edits audio files, prints their waveform, or serves the
// audio library over HTTP.
//
//	audedit waveform <file> [-points N]
//	audedit edit <file> <trim|speed|reverb|volume> [key=value ...]
//	audedit serve
//
// Configuration comes from AUDEDIT_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ik5/audedit"
	"github.com/ik5/audedit/edit"
	"github.com/ik5/audedit/internal/config"
	"github.com/ik5/audedit/internal/ffmpeg"
	"github.com/ik5/audedit/internal/httpapi"
	"github.com/ik5/audedit/internal/library"
	"github.com/ik5/audedit/internal/logging"
	"github.com/ik5/audedit/internal/store"
	"github.com/sirupsen/logrus"
)

const usage = `usage:
  audedit waveform <file> [-points N]
  audedit edit <file> <trim|speed|reverb|volume> [key=value ...]
  audedit serve
`

var errUsage = errors.New("bad usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], config.Load(), os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, cfg config.Config, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	log, err := logging.New(stderr, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	switch args[0] {
	case "waveform":
		err = runWaveform(args[1:], cfg, log, stdout)
	case "edit":
		err = runEdit(ctx, args[1:], cfg, log, stdout)
	case "serve":
		err = runServe(ctx, cfg, log)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "%v\n%s", err, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "audedit:", err)
		return 1
	}

	return 0
}

// newProcessor wires ffmpeg in when the binary can be found.
func newProcessor(cfg config.Config, log *logrus.Entry) *audedit.Processor {
	opts := audedit.Options{Points: cfg.WaveformPoints}

	runner := ffmpeg.New(cfg.FFmpeg, cfg.FFmpegTimeout, log.WithField("component", "ffmpeg"))
	if runner.Available() {
		opts.FFmpeg = runner
	} else {
		log.WithField("binary", cfg.FFmpeg).Warn("ffmpeg not found, only wav and aiff can be edited")
	}

	if cfg.NativeReverb {
		opts.Echo = edit.DecayEcho{}
	}

	return audedit.NewProcessor(opts)
}

// parseInterleaved parses flags that may appear before or after the
// positional arguments.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string

	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}
		if fs.NArg() == 0 {
			return positional, nil
		}

		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func runWaveform(args []string, cfg config.Config, log *logrus.Entry, stdout io.Writer) error {
	fs := flag.NewFlagSet("waveform", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	points := fs.Int("points", cfg.WaveformPoints, "number of waveform points")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: waveform takes exactly one file", errUsage)
	}

	res, err := newProcessor(cfg, log).WaveformFile(positional[0], *points)
	if err != nil {
		return err
	}

	return json.NewEncoder(stdout).Encode(res)
}

// parseParams turns key=value pairs into edit parameters. Numeric values
// become numbers.
func parseParams(pairs []string) (edit.Params, error) {
	params := edit.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", errUsage, pair)
		}

		if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
		} else {
			params[key] = value
		}
	}

	return params, nil
}

func runEdit(ctx context.Context, args []string, cfg config.Config, log *logrus.Entry, stdout io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: edit needs a file and an edit kind", errUsage)
	}

	kind, err := edit.ParseKind(args[1])
	if err != nil {
		return err
	}

	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}

	out, err := newProcessor(cfg, log).EditFile(ctx, args[0], kind, params)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, out)

	return err
}

func runServe(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	lib, err := library.New(st, newProcessor(cfg, log), cfg.MediaDir, log.WithField("component", "library"))
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(lib, log.WithField("component", "http"), cfg.MaxUpload).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
			server.Close()
		}
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "media": cfg.MediaDir}).Info("audedit listening")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done

	return nil
}
