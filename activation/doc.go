// SPDX-License-Identifier: MIT

// Package activation enumerates the element-wise nonlinearities graphnn layers
// accept and resolves them to plain functions once, at configuration time.
//
// A layer stores a Kind in its Config (YAML/validator friendly) and calls
// Kind.Func() in its constructor; forward passes then call the resolved
// func(float64) float64 directly, never a string lookup.
//
// Supported kinds:
//
//	linear, relu, elu, sigmoid, hard_sigmoid, tanh, softplus, leaky_relu, swish
//
// Unknown names fail with ErrUnknown.
package activation
