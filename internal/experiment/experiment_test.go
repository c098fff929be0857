package experiment

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/aerosim/internal/check"
	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

func TestRegistryComponents(t *testing.T) {
	reg := NewRegistry()

	for _, name := range reg.ListComponents() {
		c, err := reg.GetComponent(name, 0)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("registered as %s, named %s", name, c.Name())
		}
	}

	if _, err := reg.GetComponent("fuselage_drag", 0); err == nil {
		t.Error("expected error for unknown component")
	}
	if _, err := reg.GetChain("vortex-lattice"); err == nil {
		t.Error("expected error for unknown chain")
	}
	if got := reg.ListChains(); !reflect.DeepEqual(got, []string{"power-law", "standard"}) {
		t.Errorf("unexpected chains %v", got)
	}
}

func TestRegistryDifferentiable(t *testing.T) {
	reg := NewRegistry()
	want := []string{"dynamic_pressure", "lift", "lift_from_weight", "reynolds_power_law", "skin_friction_drag"}
	if got := reg.Differentiable(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCheckCasesPass(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.Differentiable() {
		cases, err := reg.CheckCases(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		c, _ := reg.GetComponent(name, 0)
		for i, in := range cases {
			report, err := check.Partials(c.(sim.Differentiable), CheckNodes, in, check.DefaultOptions())
			if err != nil {
				t.Fatalf("%s case %d: %v", name, i, err)
			}
			if !report.OK() {
				t.Errorf("%s case %d: %+v", name, i, report.Failures())
			}
		}
	}

	sfd, _ := reg.CheckCases("skin_friction_drag")
	if len(sfd) != 12 {
		t.Errorf("expected 12 skin friction samples, got %d", len(sfd))
	}
	if _, err := reg.CheckCases("reynolds"); err == nil {
		t.Error("expected no check for reynolds")
	}
}

func setup(t *testing.T, c *config.Case, chain Chain) *Experiment {
	t.Helper()
	e := New(Config{Case: c, Chain: chain})
	if err := e.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return e
}

func TestStandardChain(t *testing.T) {
	e := setup(t, config.GetPreset("unsw-m2"), ChainStandard)

	r, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	expect := map[quantity.Name]float64{
		quantity.ReynoldsNumber:   9.5027e5,
		quantity.DynamicPressure:  539.70,
		quantity.Weight:           215.812,
		quantity.LiftCoefficient:  0.91385,
		quantity.SkinFrictionDrag: 1.0380,
	}
	for name, want := range expect {
		got := r.Vars[name][0]
		if math.Abs(got-want) > 1e-3*want {
			t.Errorf("%s: expected %g, got %g", name, want, got)
		}
	}

	lift, weight := r.Vars[quantity.Lift][0], r.Vars[quantity.Weight][0]
	if math.Abs(lift-weight) > 1e-6*weight {
		t.Errorf("lift %g does not balance weight %g", lift, weight)
	}

	s := r.Summary()
	if math.Abs(s["lift_to_drag"]-207.9) > 0.1 {
		t.Errorf("expected L/D near 207.9, got %g", s["lift_to_drag"])
	}
	if r.Inputs[string(quantity.Velocity)] != "101 ft/s" {
		t.Errorf("unexpected velocity input %q", r.Inputs[string(quantity.Velocity)])
	}
}

func TestPowerLawChain(t *testing.T) {
	e := setup(t, config.GetPreset("unsw-m2"), ChainPowerLaw)

	r, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if re := r.Vars[quantity.ReynoldsNumber][0]; math.Abs(re-0.22967) > 1e-3 {
		t.Errorf("expected power-law Re near 0.2297, got %g", re)
	}
	if _, ok := r.Vars[quantity.StaticPressure]; !ok {
		t.Error("expected atmosphere outputs in power-law chain")
	}
}

func TestLowReynoldsWarning(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	warned := func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == log.WarnLevel && strings.Contains(e.Message, "skin-friction fit range") {
				return true
			}
		}
		return false
	}

	if _, err := setup(t, config.GetPreset("unsw-m2"), ChainPowerLaw).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !warned() {
		t.Error("expected a warning for power-law Re fed to skin friction")
	}

	hook.Reset()
	if _, err := setup(t, config.GetPreset("unsw-m2"), ChainStandard).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if warned() {
		t.Error("unexpected low-Re warning for the standard chain")
	}
}

func TestSweepCase(t *testing.T) {
	e := setup(t, config.GetPreset("cruise-sweep"), ChainStandard)

	r, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.NumNodes != 5 {
		t.Fatalf("expected 5 nodes, got %d", r.NumNodes)
	}
	cl := r.Vars[quantity.LiftCoefficient]
	for i := 1; i < len(cl); i++ {
		if cl[i] >= cl[i-1] {
			t.Errorf("CL should fall with speed: %v", cl)
		}
	}

	mean, err := r.Metric(quantity.Velocity, "ft/s")
	if err != nil || math.Abs(mean-100.2) > 1e-9 {
		t.Errorf("expected mean velocity 100.2 ft/s, got %g (%v)", mean, err)
	}
	if _, err := r.Metric(quantity.Name("thrust"), "N"); !errors.Is(err, sim.ErrUnknownVariable) {
		t.Errorf("expected ErrUnknownVariable, got %v", err)
	}
}

func TestCustomGravity(t *testing.T) {
	c := config.GetPreset("unsw-m2")
	c.Gravity = 1.62
	r, err := setup(t, c, ChainStandard).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if w := r.Vars[quantity.Weight][0]; math.Abs(w-1.62*21.99923) > 1e-3 {
		t.Errorf("expected lunar weight, got %g", w)
	}
}

func TestExperimentErrors(t *testing.T) {
	if _, err := New(Config{Case: config.DefaultCase()}).Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if err := New(Config{}).Setup(NewRegistry()); err == nil {
		t.Error("expected error without case")
	}

	c := config.DefaultCase()
	c.NumNodes = 0
	if err := New(Config{Case: c}).Setup(NewRegistry()); !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	bad := config.GetPreset("unsw-m2")
	bad.Set(quantity.Velocity, "ft/s", 1, 2, 3)
	bad.NumNodes = 3
	bad.Set(quantity.Mass, "lb", 1, 2)
	if err := New(Config{Case: bad}).Setup(NewRegistry()); !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for short mass, got %v", err)
	}
}
