// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Addr      string
	MaxUpload int64 // bytes

	// Storage
	MediaDir string
	DBPath   string

	// Processing
	FFmpeg         string
	FFmpegTimeout  time.Duration
	WaveformPoints int
	NativeReverb   bool // skip ffmpeg's aecho even when ffmpeg is present

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Addr:      envStr("AUDEDIT_ADDR", ":8080"),
		MaxUpload: int64(envInt("AUDEDIT_MAX_UPLOAD_MB", 100)) << 20,

		MediaDir: envStr("AUDEDIT_MEDIA_DIR", "./media"),
		DBPath:   envStr("AUDEDIT_DB_PATH", "./audedit.db"),

		FFmpeg:         envStr("AUDEDIT_FFMPEG", "ffmpeg"),
		FFmpegTimeout:  envDuration("AUDEDIT_FFMPEG_TIMEOUT", 120*time.Second),
		WaveformPoints: envInt("AUDEDIT_WAVEFORM_POINTS", 100),
		NativeReverb:   envBool("AUDEDIT_NATIVE_REVERB", false),

		LogLevel: envStr("AUDEDIT_LOG_LEVEL", "info"),
		LogJSON:  envBool("AUDEDIT_LOG_JSON", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts whole seconds ("90") or a Go duration ("1m30s").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}

	return fallback
}
