package aero

import (
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// Lift computes L = q S CL.
type Lift struct{}

func NewLift() *Lift { return &Lift{} }

func (l *Lift) Name() string { return "lift" }

func (l *Lift) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.WingArea, sim.Scalar),
			sim.In(quantity.DynamicPressure, nn),
			sim.InDefault(quantity.LiftCoefficient, nn, 1.0),
		},
		Outputs: []sim.Var{sim.Out(quantity.Lift, nn)},
	}
}

func (l *Lift) Compute(in, out sim.Vars) error {
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]
	cl := in[quantity.LiftCoefficient]
	lift := out[quantity.Lift]
	for i := range lift {
		lift[i] = q[i] * s * cl[i]
	}
	return nil
}

func (l *Lift) DeclarePartials(nn int) []sim.Partial {
	return []sim.Partial{
		sim.DensePartial(quantity.Lift, quantity.WingArea, nn, sim.Scalar),
		sim.DiagonalPartial(quantity.Lift, quantity.DynamicPressure, nn),
		sim.DiagonalPartial(quantity.Lift, quantity.LiftCoefficient, nn),
	}
}

func (l *Lift) ComputePartials(in sim.Vars, jac *sim.Jacobian) error {
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]
	cl := in[quantity.LiftCoefficient]

	dS := make([]float64, len(q))
	dQ := make([]float64, len(q))
	dCL := make([]float64, len(q))
	for i := range q {
		dS[i] = q[i] * cl[i]
		dQ[i] = s * cl[i]
		dCL[i] = q[i] * s
	}

	return setAll(jac, []block{
		{quantity.Lift, quantity.WingArea, dS},
		{quantity.Lift, quantity.DynamicPressure, dQ},
		{quantity.Lift, quantity.LiftCoefficient, dCL},
	})
}
