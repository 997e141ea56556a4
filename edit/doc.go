// SPDX-License-Identifier: EPL-2.0

// Package edit applies single transformations to decoded audio.
//
// Four kinds are supported:
//
//	trim    start_ms (0), end_ms (full length)
//	speed   speed_factor (1.0) in [0.25, 4], resampled so pitch follows speed
//	reverb  room_scale (0.5), damping (0.5)
//	volume  volume_change_db (0)
//
// Parameters arrive as a flat JSON object and are read with Params.Float;
// absent keys take the defaults above.
//
//	engine := edit.NewEngine(edit.FFmpegEcho{FFmpeg: runner})
//	out, err := engine.Apply(ctx, buf, edit.Volume, edit.Params{"volume_change_db": -6})
//
// The input buffer is never modified. Unsupported kinds fail with
// ErrUnsupportedKind, which also matches ErrInvalidParameters.
package edit
