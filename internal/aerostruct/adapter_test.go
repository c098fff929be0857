package aerostruct

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/aerosim/internal/atmosphere"
	"github.com/san-kum/aerosim/internal/mesh"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

func m2Values(t *testing.T) *quantity.Values {
	t.Helper()
	v := quantity.NewValues()
	set := func(name quantity.Name, u string, x float64) {
		if err := v.Set(name, u, x); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	set(quantity.Altitude, "ft", 2468)
	set(quantity.Velocity, "ft/s", 101)
	set(quantity.WingRootChord, "ft", 1.57)
	set(quantity.WingSpan, "ft", 3)
	set(quantity.WingThicknessToChord, "unitless", 0.1369)
	set(quantity.WingMaxThicknessLocation, "unitless", 0.215)
	return v
}

type recorder struct {
	conds []Condition
}

func (r *recorder) Solve(ctx context.Context, s Surface, c Condition) (Coefficients, error) {
	r.conds = append(r.conds, c)
	return Coefficients{CL: 0.5, CD: 0.05}, nil
}

func TestAdapterRun(t *testing.T) {
	a, err := NewBuilder().Build(m2Values(t), 1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	r, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(r.CL) != 1 || len(r.CD) != 1 {
		t.Fatalf("expected one node, got %d", len(r.CL))
	}
	if r.CL[0] < 0.2 || r.CL[0] > 0.24 {
		t.Errorf("expected CL near 0.22 at 5 deg, got %f", r.CL[0])
	}
	if math.Abs(r.CD[0]-(r.CDi[0]+r.CDv[0])) > 1e-15 {
		t.Errorf("CD should be CDi + CDv")
	}
	if r.Reynolds[0] < 9e5 || r.Reynolds[0] > 1e6 {
		t.Errorf("expected Re near 9.5e5, got %g", r.Reynolds[0])
	}
	if math.Abs(r.Mach[0]-0.0912) > 1e-3 {
		t.Errorf("expected mach near 0.0912, got %f", r.Mach[0])
	}

	wantS := 3 * 1.57 * 0.3048 * 0.3048
	if math.Abs(r.SRef-wantS) > 1e-9 {
		t.Errorf("expected SRef %f, got %f", wantS, r.SRef)
	}
}

func TestAdapterConnectsReynolds(t *testing.T) {
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Solver = rec

	a, err := NewAdapter(m2Values(t), 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	re, _ := a.Problem().Val(quantity.ReynoldsNumber, "unitless")
	if len(rec.conds) != 3 {
		t.Fatalf("expected 3 solver calls, got %d", len(rec.conds))
	}
	for i, c := range rec.conds {
		if c.Reynolds != re[i] {
			t.Errorf("node %d: solver saw Re %g, component computed %g", i, c.Reynolds, re[i])
		}
		if math.Abs(c.Alpha-DefaultAlpha*math.Pi/180) > 1e-12 {
			t.Errorf("node %d: expected default alpha, got %f rad", i, c.Alpha)
		}
		if math.Abs(c.Velocity-101*0.3048) > 1e-9 {
			t.Errorf("node %d: expected 101 ft/s, got %f m/s", i, c.Velocity)
		}
	}
}

func TestAdapterAlphaFromValues(t *testing.T) {
	v := m2Values(t)
	_ = v.Set(quantity.AngleOfAttack, "deg", 3)

	rec := &recorder{}
	opts := DefaultOptions()
	opts.Solver = rec
	a, err := NewAdapter(v, 1, opts)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = a.Run(context.Background())
	if math.Abs(rec.conds[0].Alpha-3*math.Pi/180) > 1e-12 {
		t.Errorf("expected 3 deg, got %f rad", rec.conds[0].Alpha)
	}
}

func TestAdapterErrors(t *testing.T) {
	missing := m2Values(t)
	partial := quantity.NewValues()
	for _, n := range missing.Names() {
		if n == quantity.WingSpan {
			continue
		}
		d, _ := missing.Get(n, n.Unit())
		_ = partial.Set(n, n.Unit(), d...)
	}
	if _, err := NewAdapter(partial, 1, DefaultOptions()); !errors.Is(err, quantity.ErrUnknownQuantity) {
		t.Errorf("expected missing span error, got %v", err)
	}

	opts := DefaultOptions()
	opts.Mesh.NumY = 4
	if _, err := NewAdapter(m2Values(t), 1, opts); !errors.Is(err, mesh.ErrPanelCount) {
		t.Errorf("expected ErrPanelCount, got %v", err)
	}
}

func TestAdapterSupersonic(t *testing.T) {
	a, err := NewAdapter(m2Values(t), 1, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Problem().SetVal(quantity.Velocity, "m/s", 400); err != nil {
		t.Fatal(err)
	}

	_, err = a.Run(context.Background())
	if !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
	var evalErr *sim.EvalError
	if !errors.As(err, &evalErr) || evalErr.Component != "aero_point" {
		t.Errorf("expected EvalError from aero_point, got %v", err)
	}
}

func TestEstimator(t *testing.T) {
	m, _ := mesh.Rect(mesh.Options{NumX: 2, NumY: 5, Span: 10, Chord: 1, Symmetry: true})
	s := Surface{Name: "wing", Symmetry: true, SRefType: "projected", Mesh: m, TOverC: 0.12, CMaxT: 0.3}
	e := NewEstimator()

	zero, err := e.Solve(context.Background(), s, Condition{Alpha: 0, Reynolds: 1e6, Mach: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if zero.CL != 0 || zero.CDi != 0 || zero.CDv <= 0 {
		t.Errorf("unexpected zero-alpha coefficients: %+v", zero)
	}

	// high aspect ratio approaches the 2D slope of 2 pi
	c, _ := e.Solve(context.Background(), s, Condition{Alpha: 0.05, Reynolds: 1e6, Mach: 0})
	ar := 10.0
	want := 2 * math.Pi * ar / (2 + math.Sqrt(4+ar*ar)) * 0.05
	if math.Abs(c.CL-want) > 1e-12 {
		t.Errorf("expected CL %f, got %f", want, c.CL)
	}
	if math.Abs(c.CDi-c.CL*c.CL/(math.Pi*0.95*ar)) > 1e-12 {
		t.Errorf("unexpected induced drag %f", c.CDi)
	}

	if _, err := e.Solve(context.Background(), Surface{Name: "bare"}, Condition{Reynolds: 1e6}); !errors.Is(err, ErrNoMesh) {
		t.Errorf("expected ErrNoMesh, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Solve(ctx, s, Condition{Reynolds: 1e6}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuilderName(t *testing.T) {
	b := NewBuilder()
	if b.Name != "aero_analysis" {
		t.Errorf("expected default name aero_analysis, got %s", b.Name)
	}
	b.Name = "cruise_aero"
	_, err := b.Build(quantity.NewValues(), 1)
	if err == nil || !errors.Is(err, quantity.ErrUnknownQuantity) {
		t.Errorf("expected wrapped missing-value error, got %v", err)
	}
}

// echo reports the velocity as CL and the Reynolds number as CD, failing at
// the listed velocities.
type echo struct {
	failAt map[float64]bool
}

func (e echo) Solve(ctx context.Context, s Surface, c Condition) (Coefficients, error) {
	if e.failAt[c.Velocity] {
		return Coefficients{}, ErrInvalidCondition
	}
	return Coefficients{CL: c.Velocity, CD: c.Reynolds}, nil
}

func batch(nn int) (in, out sim.Vars) {
	in = sim.Vars{
		quantity.AngleOfAttack:      make([]float64, nn),
		quantity.Velocity:           make([]float64, nn),
		quantity.Density:            make([]float64, nn),
		quantity.Temperature:        make([]float64, nn),
		quantity.WingReynoldsNumber: make([]float64, nn),
	}
	for i := 0; i < nn; i++ {
		in[quantity.Velocity][i] = float64(i + 1)
		in[quantity.Density][i] = 1.225
		in[quantity.Temperature][i] = 288.15
		in[quantity.WingReynoldsNumber][i] = 1e5 * float64(i+1)
	}
	out = sim.Vars{
		quantity.LiftCoefficient: make([]float64, nn),
		quantity.DragCoefficient: make([]float64, nn),
		quantity.InducedDrag:     make([]float64, nn),
		quantity.ViscousDrag:     make([]float64, nn),
		quantity.MachNumber:      make([]float64, nn),
	}
	return in, out
}

func TestAeroPointLargeBatch(t *testing.T) {
	const nn = 100
	in, out := batch(nn)
	point := NewAeroPoint(Surface{Name: "wing"}, echo{})
	if err := point.Compute(in, out); err != nil {
		t.Fatal(err)
	}

	a := atmosphere.SpeedOfSound(288.15)
	for i := 0; i < nn; i++ {
		v := float64(i + 1)
		if out[quantity.LiftCoefficient][i] != v {
			t.Errorf("node %d: expected CL %f, got %f", i, v, out[quantity.LiftCoefficient][i])
		}
		if out[quantity.DragCoefficient][i] != 1e5*v {
			t.Errorf("node %d: expected CD %g, got %g", i, 1e5*v, out[quantity.DragCoefficient][i])
		}
		if math.Abs(out[quantity.MachNumber][i]-v/a) > 1e-15 {
			t.Errorf("node %d: expected mach %f, got %f", i, v/a, out[quantity.MachNumber][i])
		}
	}
}

func TestAeroPointBatchError(t *testing.T) {
	const nn = 100
	in, out := batch(nn)
	point := NewAeroPoint(Surface{Name: "wing"}, echo{failAt: map[float64]bool{38: true, 81: true}})

	err := point.Compute(in, out)
	if !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
	if !strings.Contains(err.Error(), "node 37") {
		t.Errorf("expected the first failing node in the error, got %v", err)
	}
}
