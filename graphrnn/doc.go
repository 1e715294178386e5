// SPDX-License-Identifier: MIT

// Package graphrnn fuses a graph operator into the GRU recurrence, producing
// node states that evolve over a temporal sequence of graph snapshots.
//
// Two variants:
//
//	shared    e_t = op(X_t, A_t), then a GRU step on (e_t, h). One operator; the
//	          GRU owns W (Width(op)×U) and U (U×U) per gate.
//	per_gate  six operators, each with linear activation and width U:
//	            z  = σ_r(W_z(X,A) + U_z(h,A))
//	            r  = σ_r(W_r(X,A) + U_r(h,A))
//	            h̃  = σ_r(W_h(X,A) + U_h(h⊙r,A))
//	            h' = (1−z)⊙h + z⊙h̃
//	          W_z, W_r, W_h run concurrently, then U_z and U_r, then U_h.
//
// The node count N is fixed for a sequence; Run starts from the zero state and
// returns the trajectory (one N×U state per step). Inputs can be given as a
// snapshot (Step) or packed as [X ∥ A] in one N×(F+N) matrix (StepPacked).
package graphrnn
