package aero_test

import (
	"context"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/atmosphere"
	"github.com/san-kum/aerosim/internal/experiment"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

func fill(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

var _ = Describe("DynamicPressure", func() {
	It("computes half rho V squared per node", func() {
		out, err := sim.Evaluate(context.Background(), aero.NewDynamicPressure(), 3, sim.Vars{
			quantity.Density:  {1.225, 1.0, 0.5},
			quantity.Velocity: {10, 50, 100},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[quantity.DynamicPressure]).To(HaveLen(3))
		Expect(out[quantity.DynamicPressure][0]).To(BeNumerically("~", 61.25, 1e-12))
		Expect(out[quantity.DynamicPressure][1]).To(BeNumerically("~", 1250, 1e-9))
		Expect(out[quantity.DynamicPressure][2]).To(BeNumerically("~", 2500, 1e-9))
	})

	DescribeTable("output length follows the node count",
		func(nn int) {
			out, err := sim.Evaluate(context.Background(), aero.NewDynamicPressure(), nn, sim.Vars{
				quantity.Density:  fill(nn, 1.2),
				quantity.Velocity: fill(nn, 30),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out[quantity.DynamicPressure]).To(HaveLen(nn))
		},
		Entry("single node", 1),
		Entry("three nodes", 3),
		Entry("many nodes", 64),
	)
})

// samples holds a plausible canonical value for every component input.
var samples = map[quantity.Name]float64{
	quantity.Altitude:                 750,
	quantity.Velocity:                 30,
	quantity.WingCharacteristicLength: 0.5,
	quantity.Temperature:              288.15,
	quantity.Density:                  1.2,
	quantity.ReynoldsNumber:           1e6,
	quantity.WingArea:                 0.8,
	quantity.DynamicPressure:          500,
	quantity.LiftCoefficient:          0.4,
	quantity.Mass:                     20,
}

var _ = Describe("Registered components", func() {
	reg := experiment.NewRegistry()

	var entries []TableEntry
	for _, name := range reg.ListComponents() {
		for _, nn := range []int{1, 3, 64} {
			entries = append(entries, Entry(fmt.Sprintf("%s with %d nodes", name, nn), name, nn))
		}
	}

	DescribeTable("size every output to the node count",
		func(name string, nn int) {
			c, err := reg.GetComponent(name, aero.StandardGravity)
			Expect(err).NotTo(HaveOccurred())

			decl := c.Setup(nn)
			in := sim.Vars{}
			for _, v := range decl.Inputs {
				x, ok := samples[v.Name]
				Expect(ok).To(BeTrue(), "no sample value for %s", v.Name)
				in[v.Name] = fill(v.Shape, x)
			}

			out, err := sim.Evaluate(context.Background(), c, nn, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(len(decl.Outputs)))
			for _, v := range decl.Outputs {
				Expect(out[v.Name]).To(HaveLen(nn), "output %s", v.Name)
				Expect(sim.IsFinite(out[v.Name])).To(BeTrue(), "output %s", v.Name)
			}
		},
		entries,
	)
})

var _ = Describe("Lift", func() {
	It("broadcasts the scalar wing area", func() {
		out, err := sim.Evaluate(context.Background(), aero.NewLift(), 2, sim.Vars{
			quantity.WingArea:        {2},
			quantity.DynamicPressure: {100, 200},
			quantity.LiftCoefficient: {0.5, 0.25},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[quantity.Lift]).To(Equal([]float64{100, 100}))
	})
})

var _ = Describe("LiftFromWeight", func() {
	It("balances weight with the default gravity", func() {
		c := aero.NewLiftFromWeight()
		Expect(c.Gravity).To(Equal(aero.StandardGravity))

		out, err := sim.Evaluate(context.Background(), c, 1, sim.Vars{
			quantity.Mass:            {10},
			quantity.WingArea:        {2},
			quantity.DynamicPressure: {100},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[quantity.Lift][0]).To(BeNumerically("~", 98.1, 1e-12))
		Expect(out[quantity.LiftCoefficient][0]).To(BeNumerically("~", 0.4905, 1e-12))
	})

	It("uses the configured gravity", func() {
		c := &aero.LiftFromWeight{Gravity: 1.62}
		out, err := sim.Evaluate(context.Background(), c, 1, sim.Vars{
			quantity.Mass:            {10},
			quantity.WingArea:        {1},
			quantity.DynamicPressure: {1},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[quantity.Lift][0]).To(BeNumerically("~", 16.2, 1e-12))
	})

	It("round-trips through Lift", func() {
		p := sim.New(3)
		p.Add(aero.NewLiftFromWeight(), sim.Promote(quantity.Lift, quantity.Weight))
		p.Add(aero.NewLift())
		Expect(p.Setup()).To(Succeed())

		Expect(p.SetVal(quantity.Mass, "kg", 5, 20, 80)).To(Succeed())
		Expect(p.SetVal(quantity.WingArea, "m**2", 0.8)).To(Succeed())
		Expect(p.SetVal(quantity.DynamicPressure, "Pa", 150, 600, 2400)).To(Succeed())
		Expect(p.Run(context.Background())).To(Succeed())

		w, _ := p.Val(quantity.Weight, "N")
		l, _ := p.Val(quantity.Lift, "N")
		for i := range w {
			Expect(l[i]).To(BeNumerically("~", w[i], 1e-9*w[i]))
		}
	})
})

var _ = Describe("SkinFrictionDrag", func() {
	It("evaluates the Schoenherr fit at Re = 1e6", func() {
		Expect(aero.SchoenherrCf(1e6)).To(BeNumerically("~", 0.0043511, 0.01*0.0043511))
	})

	It("decreases with Reynolds number", func() {
		prev := math.Inf(1)
		for e := 5.0; e <= 8.0; e += 0.05 {
			cf := aero.SchoenherrCf(math.Pow(10, e))
			Expect(cf).To(BeNumerically("<", prev))
			prev = cf
		}
	})

	It("scales the coefficient by q S", func() {
		out, err := sim.Evaluate(context.Background(), aero.NewSkinFrictionDrag(), 2, sim.Vars{
			quantity.ReynoldsNumber:  {1e6, 1e7},
			quantity.WingArea:        {10},
			quantity.DynamicPressure: {1000, 100},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out[quantity.SkinFrictionDrag][0]).To(BeNumerically("~", 1e4*aero.SchoenherrCf(1e6), 1e-12))
		Expect(out[quantity.SkinFrictionDrag][1]).To(BeNumerically("~", 1e3*aero.SchoenherrCf(1e7), 1e-12))
	})
})

var _ = Describe("ReynoldsNumber", func() {
	var p *sim.Problem

	BeforeEach(func() {
		p = sim.New(1)
		p.Add(aero.NewReynoldsNumber())
		Expect(p.Setup()).To(Succeed())
		Expect(p.SetVal(quantity.Altitude, "ft", 400)).To(Succeed())
		Expect(p.SetVal(quantity.Velocity, "ft/s", 90)).To(Succeed())
		Expect(p.SetVal(quantity.WingCharacteristicLength, "m", 1.5)).To(Succeed())
		Expect(p.Run(context.Background())).To(Succeed())
	})

	It("gives a finite positive Reynolds number at the sample condition", func() {
		re, err := p.Val(quantity.ReynoldsNumber, "unitless")
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.IsFinite(re)).To(BeTrue())
		Expect(re[0]).To(BeNumerically(">", 0))
		Expect(re[0]).To(BeNumerically("~", 2.79e6, 0.01e6))
	})

	It("keeps kinematic viscosity exactly mu over rho", func() {
		v := p.Vars()
		mu := v[quantity.DynamicViscosity][0]
		rho := v[quantity.Density][0]
		Expect(v[quantity.KinematicViscosity][0]).To(Equal(mu / rho))
		Expect(v[quantity.Temperature][0]).To(BeNumerically("~", 287.36, 0.01))
	})

	It("propagates a zero density instead of failing", func() {
		c := &aero.ReynoldsNumber{Atmosphere: vacuum{}}
		out, err := sim.Evaluate(context.Background(), c, 1, sim.Vars{
			quantity.Altitude: {0},
			quantity.Velocity: {10},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(out[quantity.KinematicViscosity][0], 1)).To(BeTrue())
		Expect(out[quantity.ReynoldsNumber][0]).To(BeZero())
	})
})

var _ = Describe("ReynoldsPowerLaw", func() {
	It("uses mu = T^0.76", func() {
		out, err := sim.Evaluate(context.Background(), aero.NewReynoldsPowerLaw(), 1, sim.Vars{
			quantity.Temperature:              {288.15},
			quantity.Density:                  {1.225},
			quantity.Velocity:                 {30},
			quantity.WingCharacteristicLength: {2},
		})
		Expect(err).NotTo(HaveOccurred())
		mu := math.Pow(288.15, 0.76)
		Expect(out[quantity.DynamicViscosity][0]).To(BeNumerically("~", mu, 1e-12))
		Expect(out[quantity.KinematicViscosity][0]).To(Equal(mu / 1.225))
		Expect(out[quantity.ReynoldsNumber][0]).To(BeNumerically("~", 60/(mu/1.225), 1e-9))
	})

	It("can be fed from the atmosphere component", func() {
		p := sim.New(2)
		p.Add(aero.NewAtmosphere())
		p.Add(aero.NewReynoldsPowerLaw())
		Expect(p.Setup()).To(Succeed())
		Expect(p.SetVal(quantity.Altitude, "m", 0, 11000)).To(Succeed())
		Expect(p.Run(context.Background())).To(Succeed())

		temp, _ := p.Val(quantity.Temperature, "K")
		Expect(temp[0]).To(BeNumerically("~", 288.15, 1e-9))
		mu, _ := p.Val(quantity.DynamicViscosity, "kg/m/s")
		Expect(mu[1]).To(BeNumerically("~", math.Pow(temp[1], 0.76), 1e-9))
	})
})

var _ = Describe("mission scenario", func() {
	It("reproduces the weight from the lift coefficient", func() {
		p := sim.New(1)
		p.Add(aero.NewReynoldsNumber())
		p.Add(aero.NewDynamicPressure())
		p.Add(aero.NewLiftFromWeight(), sim.Promote(quantity.Lift, quantity.Weight))
		p.Add(aero.NewLift())
		p.Add(aero.NewSkinFrictionDrag())
		Expect(p.Setup()).To(Succeed())

		Expect(p.SetVal(quantity.Altitude, "ft", 2468)).To(Succeed())
		Expect(p.SetVal(quantity.Velocity, "ft/s", 101)).To(Succeed())
		Expect(p.SetVal(quantity.WingCharacteristicLength, "ft", 1.57)).To(Succeed())
		Expect(p.SetVal(quantity.Mass, "lb", 48.5)).To(Succeed())
		Expect(p.SetVal(quantity.WingArea, "ft**2", 9.42)).To(Succeed())
		Expect(p.Run(context.Background())).To(Succeed())

		mg := 48.5 * 0.45359237 * aero.StandardGravity
		l, _ := p.Val(quantity.Lift, "N")
		Expect(l[0]).To(BeNumerically("~", mg, 1e-6*mg))

		cl, _ := p.Val(quantity.LiftCoefficient, "unitless")
		Expect(cl[0]).To(BeNumerically(">", 0))
		d, _ := p.Val(quantity.SkinFrictionDrag, "N")
		Expect(d[0]).To(BeNumerically(">", 0))
		Expect(d[0]).To(BeNumerically("<", l[0]))
	})
})

type vacuum struct{}

func (vacuum) At(float64) atmosphere.Properties {
	return atmosphere.Properties{Temperature: 200, DynamicViscosity: 1e-5}
}
