// Package viz provides the terminal view used while a VQE optimisation is
// running.
//
// [Model] is a Bubble Tea model fed with [EvalMsg] values, one per
// objective evaluation, and closed by a [DoneMsg]. It plots the energy
// trace with asciigraph, draws the exact reference as a second series and
// reports the best energy and its error against chemical accuracy.
// [Watch] wires a running job to a program.
//
// # Key Bindings
//
//	q, esc, ctrl+c - cancel the optimiser and quit
//	?              - toggle help
package viz
