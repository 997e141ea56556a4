// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/internal/audiotest"
)

// Example_readAll demonstrates collecting a whole stream into a Buffer.
func Example_readAll() {
	// Two seconds of stereo silence at 8kHz
	source := audiotest.NewSilentSource(8000, 2, 16000)

	buf, err := audio.ReadAll(source)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Frames: %d\n", buf.Frames())
	fmt.Printf("Duration: %.1fs\n", buf.Seconds())
	// Output:
	// Frames: 16000
	// Duration: 2.0s
}

// Example_monoMixer demonstrates converting stereo to mono.
func Example_monoMixer() {
	source := audiotest.NewSineSource(16000, 2, 16000, 440.0)
	mono := audio.NewMonoMixer(source)

	fmt.Printf("Input channels: %d\n", source.Channels())
	fmt.Printf("Output channels: %d\n", mono.Channels())

	buf := make([]float32, 100)
	n, _ := mono.ReadSamples(buf)

	fmt.Printf("Read %d mono samples\n", n)
	// Output:
	// Input channels: 2
	// Output channels: 1
	// Read 100 mono samples
}

// Example_speed shows a speed change on an in-memory buffer.
func Example_speed() {
	buf := audio.NewBuffer(8000, 1, make([]float32, 8000*4))

	fast, err := audio.NewSpeedResampler(buf.Source(), 2.0)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	out, err := audio.ReadAll(fast)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Sample rate: %d Hz\n", out.SampleRate)
	fmt.Printf("Duration: %.1fs\n", out.Seconds())
	// Output:
	// Sample rate: 8000 Hz
	// Duration: 2.0s
}

// Example_registry shows format lookup by file extension.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("wav", nil)

	_, ok := registry.Get(".WAV")
	fmt.Println("wav registered:", ok)

	_, ok = registry.Get("flac")
	fmt.Println("flac registered:", ok)
	// Output:
	// wav registered: true
	// flac registered: false
}
