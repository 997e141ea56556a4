// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audedit/audio"
)

func testBuffer() *audio.Buffer {
	data := make([]float32, 2*2205)
	for i := range data {
		data[i] = float32(0.5 * math.Sin(float64(i)/7))
	}

	return audio.NewBuffer(22050, 2, data)
}

func assertRoundTrip(t *testing.T, encoded io.Reader, want *audio.Buffer) {
	t.Helper()

	src, err := Decoder{}.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if got.SampleRate != want.SampleRate || got.Channels != want.Channels {
		t.Fatalf("layout = %d ch @ %d Hz, want %d ch @ %d Hz",
			got.Channels, got.SampleRate, want.Channels, want.SampleRate)
	}
	if got.Frames() != want.Frames() {
		t.Fatalf("Frames() = %d, want %d", got.Frames(), want.Frames())
	}
	for i := range want.Data {
		if math.Abs(float64(got.Data[i]-want.Data[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, got.Data[i], want.Data[i])
		}
	}
}

func TestEncoder_NonSeekableWriter(t *testing.T) {
	t.Parallel()

	in := testBuffer()
	out := new(bytes.Buffer)
	if err := (Encoder{}).Encode(out, in); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.HasPrefix(out.Bytes(), []byte("FORM")) {
		t.Fatalf("output starts with %q, want FORM", out.Bytes()[:4])
	}

	assertRoundTrip(t, out, in)
}

func TestEncoder_File(t *testing.T) {
	t.Parallel()

	in := testBuffer()
	path := filepath.Join(t.TempDir(), "clip.aiff")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := (Encoder{}).Encode(f, in); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	assertRoundTrip(t, f, in)
}

func TestEncoder_InvalidBuffer(t *testing.T) {
	t.Parallel()

	if err := (Encoder{}).Encode(new(bytes.Buffer), audio.NewBuffer(44100, 0, nil)); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("Encode() error = %v, want ErrInvalidFormat", err)
	}
}

func TestWriteSeeker(t *testing.T) {
	t.Parallel()

	ws := &writeSeeker{}
	ws.Write([]byte("hello world"))

	if _, err := ws.Seek(6, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	ws.Write([]byte("WORLD"))

	if _, err := ws.Seek(-5, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	ws.Write([]byte("there!"))

	if got := string(ws.data); got != "hello there!" {
		t.Errorf("data = %q, want %q", got, "hello there!")
	}

	if _, err := ws.Seek(-100, io.SeekCurrent); err == nil {
		t.Error("Seek() before start error = nil")
	}
	if _, err := ws.Seek(0, 42); err == nil {
		t.Error("Seek() bad whence error = nil")
	}
}
