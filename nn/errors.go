// SPDX-License-Identifier: MIT

// Package nn: sentinel error set shared by all layers.
// Call sites wrap with fmt.Errorf("ctx: %w", ErrX) adding expected vs. actual
// values; callers match with errors.Is.

package nn

import "errors"

var (
	// ErrInvalidConfig indicates a configuration rejected at construction time
	// (bad hyperparameter, unsupported mode, inconsistent widths).
	ErrInvalidConfig = errors.New("nn: invalid configuration")

	// ErrShapeChanged indicates a forward call whose input widths differ from
	// the widths the layer was built with.
	ErrShapeChanged = errors.New("nn: input shape changed after build")

	// ErrDuplicateParameter indicates two parameters registered under one name.
	ErrDuplicateParameter = errors.New("nn: duplicate parameter name")
)
