package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/aerosim/internal/quantity"
)

type weigh struct{}

func (weigh) Name() string { return "weigh" }

func (weigh) Setup(nn int) Declaration {
	return Declaration{
		Inputs:  []Var{InDefault(quantity.Mass, nn, 10)},
		Outputs: []Var{Out(quantity.Weight, nn)},
	}
}

func (weigh) Compute(in, out Vars) error {
	for i, m := range in[quantity.Mass] {
		out[quantity.Weight][i] = 9.81 * m
	}
	return nil
}

func (weigh) DeclarePartials(nn int) []Partial {
	return []Partial{DiagonalPartial(quantity.Weight, quantity.Mass, nn).WithConstant(9.81)}
}

func (weigh) ComputePartials(in Vars, jac *Jacobian) error { return nil }

type halve struct{}

func (halve) Name() string { return "halve" }

func (halve) Setup(nn int) Declaration {
	return Declaration{
		Inputs:  []Var{In(quantity.Lift, nn)},
		Outputs: []Var{Out(quantity.SkinFrictionDrag, nn)},
	}
}

// Compute replaces the output slice instead of writing in place.
func (halve) Compute(in, out Vars) error {
	d := make([]float64, len(in[quantity.Lift]))
	for i, l := range in[quantity.Lift] {
		d[i] = 0.5 * l
	}
	out[quantity.SkinFrictionDrag] = d
	return nil
}

type broken struct{ short bool }

func (broken) Name() string { return "broken" }

func (broken) Setup(nn int) Declaration {
	return Declaration{Outputs: []Var{Out(quantity.Lift, nn)}}
}

func (b broken) Compute(in, out Vars) error {
	if b.short {
		out[quantity.Lift] = nil
		return nil
	}
	out[quantity.Lift][0] = math.NaN()
	return nil
}

func TestProblemRun(t *testing.T) {
	p := New(3)
	p.Add(weigh{})
	p.Add(halve{})
	p.Connect(quantity.Weight, quantity.Lift)
	if err := p.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := p.SetVal(quantity.Mass, "kg", 1, 2, 3); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	w, _ := p.Val(quantity.Weight, "N")
	d, _ := p.Val(quantity.SkinFrictionDrag, "N")
	for i, m := range []float64{1, 2, 3} {
		if math.Abs(w[i]-9.81*m) > 1e-12 {
			t.Errorf("node %d: expected weight %f, got %f", i, 9.81*m, w[i])
		}
		if math.Abs(d[i]-0.5*9.81*m) > 1e-12 {
			t.Errorf("node %d: expected drag %f, got %f", i, 0.5*9.81*m, d[i])
		}
	}

	l, err := p.Val(quantity.Lift, "N")
	if err != nil || l[2] != w[2] {
		t.Errorf("connected input should read its source: %v %v", l, err)
	}
}

func TestProblemSetValConnected(t *testing.T) {
	p := New(2)
	p.Add(weigh{})
	p.Add(halve{})
	p.Connect(quantity.Weight, quantity.Lift)
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}

	if err := p.SetVal(quantity.Lift, "N", 123); !errors.Is(err, ErrConnectedInput) {
		t.Fatalf("expected ErrConnectedInput, got %v", err)
	}
	_ = p.SetVal(quantity.Mass, "kg", 1)
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	l, _ := p.Val(quantity.Lift, "N")
	if math.Abs(l[0]-9.81) > 1e-12 {
		t.Errorf("expected lift from upstream weight 9.81, got %f", l[0])
	}
}

func TestProblemDefaultsAndBroadcast(t *testing.T) {
	p := New(4)
	p.Add(weigh{})
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}

	m, _ := p.Val(quantity.Mass, "kg")
	for _, v := range m {
		if v != 10 {
			t.Errorf("expected declared default 10, got %f", v)
		}
	}

	if err := p.SetVal(quantity.Mass, "lb", 2.2046226218487757); err != nil {
		t.Fatal(err)
	}
	m, _ = p.Val(quantity.Mass, "kg")
	for _, v := range m {
		if math.Abs(v-1) > 1e-9 {
			t.Errorf("expected broadcast 1 kg, got %f", v)
		}
	}

	if err := p.SetVal(quantity.Mass, "kg", 1, 2); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	if err := p.SetVal(quantity.Density, "kg/m**3", 1); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("expected ErrUnknownVariable, got %v", err)
	}
}

func TestProblemInputDefaultOverride(t *testing.T) {
	p := New(2)
	p.Add(weigh{})
	if err := p.SetInputDefault(quantity.Mass, "kg", 5); err != nil {
		t.Fatal(err)
	}
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}
	m, _ := p.Val(quantity.Mass, "kg")
	if m[0] != 5 || m[1] != 5 {
		t.Errorf("expected override 5, got %v", m)
	}
}

func TestProblemNotSetUp(t *testing.T) {
	p := New(1)
	p.Add(weigh{})

	if err := p.Run(context.Background()); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("expected ErrNotSetUp, got %v", err)
	}
	if _, err := p.Val(quantity.Weight, "N"); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("expected ErrNotSetUp, got %v", err)
	}
}

func TestProblemPromotion(t *testing.T) {
	p := New(2)
	p.Add(weigh{}, Promote(quantity.Weight, quantity.Lift))
	p.Add(halve{})
	if err := p.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_ = p.SetVal(quantity.Mass, "kg", 2)
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	d, _ := p.Val(quantity.SkinFrictionDrag, "N")
	if math.Abs(d[0]-9.81) > 1e-12 {
		t.Errorf("expected 9.81, got %f", d[0])
	}
	if _, err := p.Val(quantity.Weight, "N"); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("aliased local name should not be promoted, got %v", err)
	}

	bad := New(1)
	bad.Add(weigh{}, Promote(quantity.Weight, quantity.Mass))
	if err := bad.Setup(); !errors.Is(err, quantity.ErrUnitMismatch) {
		t.Errorf("expected ErrUnitMismatch, got %v", err)
	}
}

func TestProblemSetupErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Problem
		want  error
	}{
		{"duplicate output", func() *Problem {
			p := New(2)
			p.Add(weigh{})
			p.Add(weigh{})
			return p
		}, ErrDuplicateOutput},
		{"unknown connect source", func() *Problem {
			p := New(2)
			p.Add(halve{})
			p.Connect(quantity.Weight, quantity.Lift)
			return p
		}, ErrUnknownVariable},
		{"connect into output", func() *Problem {
			p := New(2)
			p.Add(weigh{})
			p.Add(halve{})
			p.Connect(quantity.Lift, quantity.Weight)
			return p
		}, ErrDuplicateOutput},
		{"bad default length", func() *Problem {
			p := New(3)
			p.Add(weigh{})
			_ = p.SetInputDefault(quantity.Mass, "kg", 1, 2)
			return p
		}, ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build().Setup(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProblemOutputValidation(t *testing.T) {
	p := NewWithOptions(2, Options{ValidateOutputs: true})
	p.Add(broken{})
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}

	err := p.Run(context.Background())
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) || evalErr.Component != "broken" {
		t.Errorf("expected EvalError from broken, got %v", err)
	}

	loose := New(2)
	loose.Add(broken{})
	_ = loose.Setup()
	if err := loose.Run(context.Background()); err != nil {
		t.Errorf("NaN should pass through without validation, got %v", err)
	}

	short := New(2)
	short.Add(broken{short: true})
	_ = short.Setup()
	if err := short.Run(context.Background()); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestProblemCancelled(t *testing.T) {
	p := New(1)
	p.Add(weigh{})
	_ = p.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProblemLinearize(t *testing.T) {
	p := New(3)
	p.Add(weigh{}, Promote(quantity.Weight, quantity.Lift))
	p.Add(halve{})
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}

	jac, err := p.Linearize(context.Background())
	if err != nil {
		t.Fatalf("linearize failed: %v", err)
	}
	blk, ok := jac.Get(quantity.Lift, quantity.Mass)
	if !ok {
		t.Fatal("expected d(lift)/d(mass) under promoted name")
	}
	for i := 0; i < 3; i++ {
		if blk.At(i, i) != 9.81 {
			t.Errorf("node %d: expected 9.81, got %f", i, blk.At(i, i))
		}
	}
	if len(jac.Partials()) != 1 {
		t.Errorf("expected only differentiable components in the jacobian, got %d blocks", len(jac.Partials()))
	}
}

func TestProblemInputsOutputs(t *testing.T) {
	p := New(1)
	p.Add(weigh{})
	p.Add(halve{})
	p.Connect(quantity.Weight, quantity.Lift)
	_ = p.Setup()

	in := p.Inputs()
	if len(in) != 1 || in[0] != quantity.Mass {
		t.Errorf("expected [mass], got %v", in)
	}
	out := p.Outputs()
	if len(out) != 2 {
		t.Errorf("expected 2 outputs, got %v", out)
	}
}

func TestEvaluate(t *testing.T) {
	out, err := Evaluate(context.Background(), weigh{}, 2, Vars{quantity.Mass: {1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[quantity.Weight][1] != 2*9.81 {
		t.Errorf("unexpected outputs: %v", out)
	}

	if _, err := Evaluate(context.Background(), weigh{}, 2, Vars{quantity.Density: {1}}); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("expected ErrUnknownVariable, got %v", err)
	}
}
