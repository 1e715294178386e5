// SPDX-License-Identifier: MIT

package activation

import "errors"

// ErrUnknown is returned for an activation name outside the supported set.
var ErrUnknown = errors.New("activation: unknown activation")
