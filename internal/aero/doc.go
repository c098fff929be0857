// Package aero implements the aerodynamic analysis components: Reynolds
// number, dynamic pressure, lift, lift from weight and wing skin-friction
// drag.
//
// Every component works on a batch of nn flight-condition nodes. Per-node
// quantities have length nn; wing area and characteristic length are
// scalars broadcast across the batch. Components hold no state between
// calls and do not guard their physics: a zero density or a Reynolds number
// near the Schoenherr singularity yields Inf or NaN outputs, which a
// [sim.Problem] can reject with Options.ValidateOutputs.
//
// All components except [ReynoldsNumber] and [Atmosphere] implement
// [sim.Differentiable] with diagonal partials on per-node inputs and a
// dense column on scalar inputs.
package aero
