// SPDX-License-Identifier: MIT

package blocks

import "errors"

// ErrInvalidLabel is returned when a class label is outside [0, Classes).
var ErrInvalidLabel = errors.New("blocks: label out of range")
