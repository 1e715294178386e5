// SPDX-License-Identifier: MIT

// Package config reads a YAML model description and builds its layers.
//
// A file lists named layers per family; every entry inlines the Config of the
// package it builds:
//
//	seed: 7
//	operators:
//	  - name: encoder
//	    kind: gcn
//	    units: 16
//	    filter: {mode: chebyshev, support: 3}
//	recurrent:
//	  - name: clock
//	    kind: tlstm
//	    units: 8
//	graph_recurrent:
//	  - name: gcrn
//	    units: 8
//	    mode: per_gate
//	    operator: {kind: gat, heads: 2}
//	dense:
//	  - name: head
//	    units: [32, 4]
//	residual:
//	  - name: skip
//	    units1: [16]
//	bilinear:
//	  - name: link
//	    units: 1
//	sampled_softmax:
//	  - name: vocab
//	    classes: 1000
//	    sampled: 64
//
// Decoding is strict: unknown keys and unknown activation names are errors.
// Layer names must be unique across the whole file. With seed set, every layer
// draws its random stream from one seeded source in file order, so a file
// builds to identical initial parameters on every run.
package config
