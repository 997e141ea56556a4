// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameter names understood by the engine.
const (
	ParamStartMS   = "start_ms"
	ParamEndMS     = "end_ms"
	ParamSpeed     = "speed_factor"
	ParamRoomScale = "room_scale"
	ParamDamping   = "damping"
	ParamVolumeDB  = "volume_change_db"
)

// Params holds the flat parameter object of one edit, as decoded from JSON.
// Unknown keys are ignored.
type Params map[string]any

// ParseParams decodes a JSON object. A JSON string holding an encoded
// object is unwrapped first; null or empty input yields empty Params.
func ParseParams(raw []byte) (Params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Params{}, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}

		return ParseParams([]byte(inner))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var p Params
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	if p == nil {
		p = Params{}
	}

	return p, nil
}

// Float returns the numeric value of key, or def when the key is absent or
// null. Numbers may be Go numerics, json.Number or numeric strings.
func (p Params) Float(key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}

	var (
		v   float64
		err error
	)

	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case int32:
		v = float64(x)
	case json.Number:
		v, err = x.Float64()
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidParameters, key, raw)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidParameters, key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidParameters, key)
	}

	return v, nil
}
