// SPDX-License-Identifier: MIT

package rnn

import "errors"

var (
	// ErrInvalidGap indicates a negative, NaN or ±Inf time gap.
	ErrInvalidGap = errors.New("rnn: invalid time gap")

	// ErrEmptySequence indicates Run was called with no steps.
	ErrEmptySequence = errors.New("rnn: empty sequence")
)
