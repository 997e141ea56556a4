// SPDX-License-Identifier: EPL-2.0

package edit

import "fmt"

// Kind names one of the supported transformations.
type Kind string

const (
	Trim   Kind = "trim"
	Speed  Kind = "speed"
	Reverb Kind = "reverb"
	Volume Kind = "volume"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{Trim, Speed, Reverb, Volume}
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	switch k {
	case Trim, Speed, Reverb, Volume:
		return true
	default:
		return false
	}
}

func (k Kind) String() string { return string(k) }

// ParseKind maps an edit type name to its Kind. Names are case-sensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}

	return k, nil
}
