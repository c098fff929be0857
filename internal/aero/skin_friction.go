package aero

import (
	"math"

	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// SchoenherrCf is the explicit turbulent flat-plate fit to the Schoenherr
// line, Cf = 1/(3.46 log10(Re) - 5.6)^2. It is singular near Re = 4.85.
func SchoenherrCf(re float64) float64 {
	d := 3.46*math.Log10(re) - 5.6
	return 1 / (d * d)
}

// SchoenherrMinReynolds is the low end of the range the fit is used over.
// Below it the drag is not physically meaningful.
const SchoenherrMinReynolds = 1e5

// schoenherrSlope is 2 * 3.46 / ln(10).
const schoenherrSlope = 3.00531

// SkinFrictionDrag computes wing skin-friction drag D = q S Cf(Re).
type SkinFrictionDrag struct{}

func NewSkinFrictionDrag() *SkinFrictionDrag { return &SkinFrictionDrag{} }

func (d *SkinFrictionDrag) Name() string { return "skin_friction_drag" }

func (d *SkinFrictionDrag) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.ReynoldsNumber, nn),
			sim.In(quantity.WingArea, sim.Scalar),
			sim.In(quantity.DynamicPressure, nn),
		},
		Outputs: []sim.Var{sim.Out(quantity.SkinFrictionDrag, nn)},
	}
}

func (d *SkinFrictionDrag) Compute(in, out sim.Vars) error {
	re := in[quantity.ReynoldsNumber]
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]
	drag := out[quantity.SkinFrictionDrag]
	for i := range drag {
		drag[i] = q[i] * s * SchoenherrCf(re[i])
	}
	return nil
}

func (d *SkinFrictionDrag) DeclarePartials(nn int) []sim.Partial {
	return []sim.Partial{
		sim.DensePartial(quantity.SkinFrictionDrag, quantity.WingArea, nn, sim.Scalar),
		sim.DiagonalPartial(quantity.SkinFrictionDrag, quantity.DynamicPressure, nn),
		sim.DiagonalPartial(quantity.SkinFrictionDrag, quantity.ReynoldsNumber, nn),
	}
}

func (d *SkinFrictionDrag) ComputePartials(in sim.Vars, jac *sim.Jacobian) error {
	re := in[quantity.ReynoldsNumber]
	s := in.Scalar(quantity.WingArea)
	q := in[quantity.DynamicPressure]

	dS := make([]float64, len(re))
	dQ := make([]float64, len(re))
	dRe := make([]float64, len(re))
	for i := range re {
		cf := SchoenherrCf(re[i])
		den := 3.46*math.Log10(re[i]) - 5.6
		dS[i] = q[i] * cf
		dQ[i] = s * cf
		dRe[i] = -schoenherrSlope * q[i] * s / (re[i] * den * den * den)
	}

	return setAll(jac, []block{
		{quantity.SkinFrictionDrag, quantity.WingArea, dS},
		{quantity.SkinFrictionDrag, quantity.DynamicPressure, dQ},
		{quantity.SkinFrictionDrag, quantity.ReynoldsNumber, dRe},
	})
}
