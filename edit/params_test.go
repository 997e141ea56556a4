// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParams_Float(t *testing.T) {
	t.Parallel()

	p := Params{
		"f64":    1.5,
		"f32":    float32(0.25),
		"int":    3,
		"int64":  int64(-4),
		"number": json.Number("2.75"),
		"string": " 1000 ",
		"null":   nil,
	}

	tests := []struct {
		key  string
		want float64
	}{
		{"f64", 1.5},
		{"f32", 0.25},
		{"int", 3},
		{"int64", -4},
		{"number", 2.75},
		{"string", 1000},
		{"null", 9},
		{"missing", 9},
	}

	for _, tt := range tests {
		got, err := p.Float(tt.key, 9)
		if err != nil {
			t.Errorf("Float(%q) error = %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Float(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParams_FloatInvalid(t *testing.T) {
	t.Parallel()

	p := Params{
		"word":  "loud",
		"bool":  true,
		"list":  []any{1},
		"inf":   math.Inf(1),
		"nan":   "NaN",
		"empty": "",
	}

	for key := range p {
		if _, err := p.Float(key, 0); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("Float(%q) error = %v, want ErrInvalidParameters", key, err)
		}
	}
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		key     string
		want    float64
		wantLen int
	}{
		{"object", `{"start_ms": 1000, "end_ms": 2000}`, "end_ms", 2000, 2},
		{"encoded string", `"{\"speed_factor\": 1.5}"`, "speed_factor", 1.5, 1},
		{"null", `null`, "", 0, 0},
		{"empty", ``, "", 0, 0},
		{"empty string", `""`, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := ParseParams([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseParams() error = %v", err)
			}
			if len(p) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(p), tt.wantLen)
			}
			if tt.key == "" {
				return
			}

			got, err := p.Float(tt.key, 0)
			if err != nil || got != tt.want {
				t.Errorf("Float(%q) = %v, %v; want %v", tt.key, got, err, tt.want)
			}
		})
	}
}

func TestParseParams_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`[1, 2]`, `{"a":`, `"not json"`, `42`} {
		if _, err := ParseParams([]byte(raw)); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("ParseParams(%s) error = %v, want ErrInvalidParameters", raw, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}

	for _, s := range []string{"", "echo", "Trim", " trim"} {
		if _, err := ParseKind(s); !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnsupportedKind", s, err)
		}
		if Kind(s).Valid() {
			t.Errorf("Kind(%q).Valid() = true", s)
		}
	}

	if len(Kinds()) != 4 {
		t.Errorf("Kinds() = %v", Kinds())
	}
}
