// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameters = errors.New("invalid edit parameters")
	ErrUnsupportedKind   = fmt.Errorf("%w: unsupported edit kind", ErrInvalidParameters)
	ErrProcessingFailed  = errors.New("audio processing failed")
)
