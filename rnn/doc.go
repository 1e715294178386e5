// SPDX-License-Identifier: MIT

// Package rnn provides the recurrent cell family used directly on node features
// and inside graph-recurrent cells: GRU, LSTM and the time-aware TLSTM.
//
// Every cell maps (x_t: B×F, state: B×S) to (out_t: B×U, next: B×S) row-wise;
// rows are independent (nodes, or sequence elements in a batch). State sizes:
//
//	GRU         S = U       state = h
//	LSTM/TLSTM  S = 2U      state = [h ∥ c]
//
// Equations (σ_r = RecurrentActivation, act = Activation):
//
//	GRU    z  = σ_r(x·W_z + h·U_z + b_z)
//	       r  = σ_r(x·W_r + h·U_r + b_r)
//	       h̃  = σ_r(x·W_h + (h⊙r)·U_h + b_h)
//	       h' = (1−z)⊙h + z⊙h̃
//
//	LSTM   f, i, o, c̃ = σ_r(x·W_g + h·U_g + b_g)   g ∈ {f, i, o, c}
//	       c' = f⊙c + i⊙c̃
//	       h' = o⊙act(c')
//
//	TLSTM  cs  = act(c·W_d + b_d)
//	       c*  = (c − cs) + cs / ln(e + Δt)
//	       then the LSTM update with c* in place of c.
//
// The candidates h̃ and c̃ use the recurrent activation, not act.
//
// Dropout (train only, inverted, independent masks): Dropout on x;
// RecurrentDropout on h (and separately on c) and on every gate output.
//
// Run unrolls a cell over a sequence from the zero state.
package rnn
