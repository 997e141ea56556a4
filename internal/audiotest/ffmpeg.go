// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// copyScript stands in for ffmpeg: it copies the -i input to the last
// argument and appends its arguments to args.log next to itself.
const copyScript = `#!/bin/sh
in=""
out=""
echo "$@" >> "$(dirname "$0")/args.log"
while [ $# -gt 0 ]; do
	case "$1" in
	-i) in="$2"; shift 2; continue ;;
	esac
	out="$1"
	shift
done
exec cp "$in" "$out"
`

func writeScript(tb testing.TB, body string) string {
	tb.Helper()

	if runtime.GOOS == "windows" {
		tb.Skip("fake ffmpeg needs a POSIX shell")
	}

	path := filepath.Join(tb.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		tb.Fatalf("writing fake ffmpeg: %v", err)
	}

	return path
}

// FakeFFmpeg installs a copying ffmpeg stand-in and returns its path.
func FakeFFmpeg(tb testing.TB) string {
	tb.Helper()

	return writeScript(tb, copyScript)
}

// FailingFFmpeg installs an ffmpeg stand-in that prints stderr and exits
// with code.
func FailingFFmpeg(tb testing.TB, stderr string, code int) string {
	tb.Helper()

	return writeScript(tb, fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit %d\n", stderr, code))
}

// SlowFFmpeg installs an ffmpeg stand-in that sleeps for seconds.
func SlowFFmpeg(tb testing.TB, seconds int) string {
	tb.Helper()

	return writeScript(tb, fmt.Sprintf("#!/bin/sh\nexec sleep %d\n", seconds))
}

// FFmpegArgs returns what the fake at path has logged so far.
func FFmpegArgs(tb testing.TB, path string) string {
	tb.Helper()

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "args.log"))
	if err != nil && !os.IsNotExist(err) {
		tb.Fatalf("reading fake ffmpeg log: %v", err)
	}

	return string(data)
}
