// Package sim hosts analysis components and evaluates them as a data-flow
// graph over a batch of flight conditions.
//
// The package defines the contracts shared by every component:
//
//   - [Component]: declares named inputs/outputs and computes outputs
//   - [Differentiable]: additionally declares and fills partial derivatives
//   - [Partial]: an explicit sparse-derivative record
//   - [Problem]: owns the variable store, promotes names, runs components
//
// # Example
//
//	p := sim.New(4)
//	p.Add(aero.NewDynamicPressure())
//	_ = p.Setup()
//	_ = p.SetVal(quantity.Velocity, "ft/s", 90, 95, 100, 105)
//	_ = p.Run(ctx)
//	q, _ := p.Val(quantity.DynamicPressure, "psf")
//
// # Batches
//
// Every per-node variable has length N (the problem's node count); scalars
// have length 1 and are broadcast by the components that read them. Nodes
// are independent: output i of a diagonal partial depends only on input i.
//
// # Thread Safety
//
// A Problem is NOT safe for concurrent use. Use [RunCases] to evaluate
// independent problems in parallel.
package sim
