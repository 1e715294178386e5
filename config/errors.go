// SPDX-License-Identifier: MIT

package config

import "errors"

var (
	// ErrEmpty is returned for a document with no content.
	ErrEmpty = errors.New("config: empty document")

	// ErrDuplicateName is returned when two layers share a name.
	ErrDuplicateName = errors.New("config: duplicate layer name")

	// ErrMissingName is returned for a layer entry without a name.
	ErrMissingName = errors.New("config: missing layer name")
)
