// SPDX-License-Identifier: EPL-2.0

/*
Package audedit edits audio files and extracts display waveforms from them.

A Processor ties the pieces together: a format registry picks a decoder by
file extension, the edit engine applies one of trim, speed, reverb or volume
to the decoded buffer, and the result is written next to the input under a
fresh <uuid>.<ext> name in the same container format.

	p := audedit.NewProcessor(audedit.Options{})

	out, err := p.EditFile(ctx, "clip.wav", edit.Volume, edit.Params{
		edit.ParamVolumeDB: -6,
	})

	res, err := p.Waveform(out)
	fmt.Println(len(res.Waveform), res.Duration)

# Formats

Without ffmpeg the processor reads and writes WAV and AIFF natively, and reads
MP3 and Ogg Vorbis. With an ffmpeg runner in Options it also writes MP3, Ogg
and M4A, reads M4A, and runs reverb through ffmpeg's aecho filter:

	runner := ffmpeg.New("ffmpeg", 2*time.Minute, log)
	p := audedit.NewProcessor(audedit.Options{FFmpeg: runner})

# Errors

Edit failures wrap edit.ErrInvalidParameters or edit.ErrProcessingFailed,
waveform failures wrap waveform.ErrInvalidPoints or
waveform.ErrExtractionFailed. Unknown extensions additionally wrap
ErrUnsupportedFormat. When EditFile fails no output file is left behind.

# Packages

  - audio: Source, Buffer, registry, resampler and mono mixer
  - formats/...: wav, aiff, mp3, vorbis and ffmpeg-backed codecs
  - edit: the edit engine and parameter parsing
  - waveform: envelope extraction
  - utils: sample conversion, interpolation and decibel helpers
*/
package audedit
