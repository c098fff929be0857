// Package check compares analytic partial derivatives against central
// finite differences.
package check

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

type Options struct {
	// Step is the finite-difference step relative to max(1, |x|).
	Step float64
	// RelTol is the allowed relative error on an entry.
	RelTol float64
	// AbsTol is the allowed error relative to the output magnitude, used
	// for entries that are zero or close to it.
	AbsTol float64
}

func DefaultOptions() Options {
	return Options{Step: 1e-6, RelTol: 1e-4, AbsTol: 1e-7}
}

// Row summarises one (output, input) block.
type Row struct {
	Component string
	Of, Wrt   quantity.Name
	// Pattern is the declared sparsity, or "undeclared".
	Pattern  string
	Analytic float64 // entry with the largest error
	FD       float64
	AbsErr   float64
	RelErr   float64
	OK       bool
}

type Report struct {
	Rows []Row
}

func (r *Report) OK() bool {
	for _, row := range r.Rows {
		if !row.OK {
			return false
		}
	}
	return true
}

// Failures returns the rows that exceeded tolerance.
func (r *Report) Failures() []Row {
	var out []Row
	for _, row := range r.Rows {
		if !row.OK {
			out = append(out, row)
		}
	}
	return out
}

type span struct {
	name   quantity.Name
	offset int
	size   int
}

func layout(vars []sim.Var) ([]span, int) {
	spans := make([]span, len(vars))
	n := 0
	for i, v := range vars {
		spans[i] = span{name: v.Name, offset: n, size: v.Shape}
		n += v.Shape
	}
	return spans, n
}

// Partials checks every (output, input) pair of c at the point in. Inputs
// missing from in default to 1; scalars are broadcast to their shape.
func Partials(c sim.Differentiable, nn int, in sim.Vars, opts Options) (*Report, error) {
	decl := c.Setup(nn)
	ins, nx := layout(decl.Inputs)
	outs, ny := layout(decl.Outputs)

	x0 := make([]float64, nx)
	for _, s := range ins {
		src := in[s.name]
		for k := 0; k < s.size; k++ {
			switch {
			case len(src) == 0:
				x0[s.offset+k] = 1
			case len(src) == 1:
				x0[s.offset+k] = src[0]
			case len(src) == s.size:
				x0[s.offset+k] = src[k]
			default:
				return nil, fmt.Errorf("%w: %s has %d values, want %d", sim.ErrShapeMismatch, s.name, len(src), s.size)
			}
		}
	}

	scale := make([]float64, nx)
	for k, x := range x0 {
		scale[k] = math.Max(1, math.Abs(x))
	}

	unpack := func(x []float64, spans []span) sim.Vars {
		v := make(sim.Vars, len(spans))
		for _, s := range spans {
			v[s.name] = x[s.offset : s.offset+s.size]
		}
		return v
	}

	var evalErr error
	eval := func(y, x []float64) {
		out := unpack(y, outs)
		if err := c.Compute(unpack(x, ins), out); err != nil && evalErr == nil {
			evalErr = err
		}
		for _, s := range outs {
			copy(y[s.offset:s.offset+s.size], out[s.name])
		}
	}

	y0 := make([]float64, ny)
	eval(y0, x0)

	// Differentiate in scaled coordinates u, x = x0 + scale*u.
	num := mat.NewDense(ny, nx, nil)
	xs := make([]float64, nx)
	fd.Jacobian(num, func(y, u []float64) {
		for k := range u {
			xs[k] = x0[k] + scale[k]*u[k]
		}
		eval(y, xs)
	}, make([]float64, nx), &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    opts.Step,
	})
	if evalErr != nil {
		return nil, &sim.EvalError{Component: c.Name(), Stage: "compute", Wrapped: evalErr}
	}

	jac, err := sim.NewJacobian(c.DeclarePartials(nn))
	if err != nil {
		return nil, &sim.EvalError{Component: c.Name(), Stage: "declare partials", Wrapped: err}
	}
	if err := c.ComputePartials(unpack(x0, ins), jac); err != nil {
		return nil, &sim.EvalError{Component: c.Name(), Stage: "compute partials", Wrapped: err}
	}

	report := &Report{}
	for _, o := range outs {
		for _, w := range ins {
			row := Row{Component: c.Name(), Of: o.name, Wrt: w.name, Pattern: "undeclared", OK: true}
			p, declared := jac.Get(o.name, w.name)
			if declared {
				row.Pattern = p.Pattern.String()
			}

			worst, worstBad := -1.0, false
			for i := 0; i < o.size; i++ {
				for j := 0; j < w.size; j++ {
					var a float64
					if declared {
						a = p.At(i, j)
					}
					f := num.At(o.offset+i, w.offset+j) / scale[w.offset+j]

					abs := math.Abs(a - f)
					rel := 0.0
					if m := math.Max(math.Abs(a), math.Abs(f)); m > 0 {
						rel = abs / m
					}
					floor := opts.AbsTol * math.Max(1, math.Abs(y0[o.offset+i])) / scale[w.offset+j]
					ok := rel <= opts.RelTol || abs <= floor

					switch {
					case !ok && !worstBad, !ok && abs > worst, ok && !worstBad && abs > worst:
						row.Analytic, row.FD, row.AbsErr, row.RelErr = a, f, abs, rel
						worst, worstBad = abs, !ok
					}
					row.OK = row.OK && ok
				}
			}
			report.Rows = append(report.Rows, row)
		}
	}
	return report, nil
}
