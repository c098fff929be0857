package aero

import (
	"math"

	"github.com/san-kum/aerosim/internal/atmosphere"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// ReynoldsNumber looks up the atmosphere at each node's altitude and
// evaluates the Reynolds number on the wing characteristic length.
type ReynoldsNumber struct {
	Atmosphere atmosphere.Model
}

func NewReynoldsNumber() *ReynoldsNumber {
	return &ReynoldsNumber{Atmosphere: atmosphere.Standard()}
}

func (r *ReynoldsNumber) Name() string { return "reynolds" }

func (r *ReynoldsNumber) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.Altitude, nn),
			sim.In(quantity.Velocity, nn),
			sim.In(quantity.WingCharacteristicLength, sim.Scalar),
		},
		Outputs: []sim.Var{
			sim.Out(quantity.Temperature, nn),
			sim.Out(quantity.Density, nn),
			sim.Out(quantity.DynamicViscosity, nn),
			sim.Out(quantity.KinematicViscosity, nn),
			sim.Out(quantity.ReynoldsNumber, nn),
		},
	}
}

func (r *ReynoldsNumber) Compute(in, out sim.Vars) error {
	h := in[quantity.Altitude]
	v := in[quantity.Velocity]
	l := in.Scalar(quantity.WingCharacteristicLength)

	temp := out[quantity.Temperature]
	rho := out[quantity.Density]
	mu := out[quantity.DynamicViscosity]
	nu := out[quantity.KinematicViscosity]
	re := out[quantity.ReynoldsNumber]

	for i := range h {
		p := r.Atmosphere.At(h[i])
		temp[i] = p.Temperature
		rho[i] = p.Density
		mu[i] = p.DynamicViscosity
		nu[i] = mu[i] / rho[i]
		re[i] = v[i] * l / nu[i]
	}
	return nil
}

// PowerLawExponent is the temperature exponent of the viscosity fit
// mu = T^0.76.
const PowerLawExponent = 0.76

// ReynoldsPowerLaw computes the Reynolds number from a supplied temperature
// and density, with viscosity from a power-law fit instead of an
// atmosphere table. The fit returns mu in fit units, not kg/(m s), so its
// Reynolds numbers are only comparable with each other.
type ReynoldsPowerLaw struct {
	Exponent float64
}

func NewReynoldsPowerLaw() *ReynoldsPowerLaw {
	return &ReynoldsPowerLaw{Exponent: PowerLawExponent}
}

func (r *ReynoldsPowerLaw) Name() string { return "reynolds_power_law" }

func (r *ReynoldsPowerLaw) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.Temperature, nn),
			sim.In(quantity.Density, nn),
			sim.In(quantity.Velocity, nn),
			sim.In(quantity.WingCharacteristicLength, sim.Scalar),
		},
		Outputs: []sim.Var{
			sim.Out(quantity.DynamicViscosity, nn),
			sim.Out(quantity.KinematicViscosity, nn),
			sim.Out(quantity.ReynoldsNumber, nn),
		},
	}
}

func (r *ReynoldsPowerLaw) Compute(in, out sim.Vars) error {
	temp := in[quantity.Temperature]
	rho := in[quantity.Density]
	v := in[quantity.Velocity]
	l := in.Scalar(quantity.WingCharacteristicLength)

	mu := out[quantity.DynamicViscosity]
	nu := out[quantity.KinematicViscosity]
	re := out[quantity.ReynoldsNumber]

	for i := range temp {
		mu[i] = math.Pow(temp[i], r.Exponent)
		nu[i] = mu[i] / rho[i]
		re[i] = v[i] * l / nu[i]
	}
	return nil
}

func (r *ReynoldsPowerLaw) DeclarePartials(nn int) []sim.Partial {
	return []sim.Partial{
		sim.DiagonalPartial(quantity.DynamicViscosity, quantity.Temperature, nn),
		sim.DiagonalPartial(quantity.KinematicViscosity, quantity.Temperature, nn),
		sim.DiagonalPartial(quantity.KinematicViscosity, quantity.Density, nn),
		sim.DiagonalPartial(quantity.ReynoldsNumber, quantity.Temperature, nn),
		sim.DiagonalPartial(quantity.ReynoldsNumber, quantity.Density, nn),
		sim.DiagonalPartial(quantity.ReynoldsNumber, quantity.Velocity, nn),
		sim.DensePartial(quantity.ReynoldsNumber, quantity.WingCharacteristicLength, nn, sim.Scalar),
	}
}

func (r *ReynoldsPowerLaw) ComputePartials(in sim.Vars, jac *sim.Jacobian) error {
	temp := in[quantity.Temperature]
	rho := in[quantity.Density]
	v := in[quantity.Velocity]
	l := in.Scalar(quantity.WingCharacteristicLength)

	nn := len(temp)
	dmuT := make([]float64, nn)
	dnuT := make([]float64, nn)
	dnuRho := make([]float64, nn)
	dreT := make([]float64, nn)
	dreRho := make([]float64, nn)
	dreV := make([]float64, nn)
	dreL := make([]float64, nn)

	k := r.Exponent
	for i := range temp {
		mu := math.Pow(temp[i], k)
		nu := mu / rho[i]
		re := v[i] * l / nu

		dmuT[i] = k * math.Pow(temp[i], k-1)
		dnuT[i] = dmuT[i] / rho[i]
		dnuRho[i] = -mu / (rho[i] * rho[i])
		dreT[i] = -k * re / temp[i]
		dreRho[i] = re / rho[i]
		dreV[i] = l / nu
		dreL[i] = v[i] / nu
	}

	return setAll(jac, []block{
		{quantity.DynamicViscosity, quantity.Temperature, dmuT},
		{quantity.KinematicViscosity, quantity.Temperature, dnuT},
		{quantity.KinematicViscosity, quantity.Density, dnuRho},
		{quantity.ReynoldsNumber, quantity.Temperature, dreT},
		{quantity.ReynoldsNumber, quantity.Density, dreRho},
		{quantity.ReynoldsNumber, quantity.Velocity, dreV},
		{quantity.ReynoldsNumber, quantity.WingCharacteristicLength, dreL},
	})
}

// Atmosphere exposes the standard atmosphere as a component so that the
// power-law Reynolds variant can be fed from altitude.
type Atmosphere struct {
	Model atmosphere.Model
}

func NewAtmosphere() *Atmosphere {
	return &Atmosphere{Model: atmosphere.Standard()}
}

func (a *Atmosphere) Name() string { return "atmosphere" }

func (a *Atmosphere) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{sim.In(quantity.Altitude, nn)},
		Outputs: []sim.Var{
			sim.Out(quantity.Temperature, nn),
			sim.Out(quantity.Density, nn),
			sim.Out(quantity.StaticPressure, nn),
			sim.Out(quantity.SpeedOfSound, nn),
		},
	}
}

func (a *Atmosphere) Compute(in, out sim.Vars) error {
	for i, h := range in[quantity.Altitude] {
		p := a.Model.At(h)
		out[quantity.Temperature][i] = p.Temperature
		out[quantity.Density][i] = p.Density
		out[quantity.StaticPressure][i] = p.Pressure
		out[quantity.SpeedOfSound][i] = p.SpeedOfSound
	}
	return nil
}
