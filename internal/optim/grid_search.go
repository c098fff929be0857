package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/experiment"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

var (
	ErrAxes       = errors.New("optim: grid search takes one or two axes")
	ErrNoFeasible = errors.New("optim: no grid point evaluated to a finite objective")
)

// Axis is one searched input with its candidate values in Unit.
type Axis struct {
	Name   quantity.Name
	Unit   string
	Values []float64
}

// Linspace returns n evenly spaced values on [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Params maps axis names to values in their axis unit.
type Params map[quantity.Name]float64

// Objective evaluates one grid point.
type Objective func(ctx context.Context, p Params) (float64, error)

type GridSearch struct {
	axes []Axis
	// Limit caps concurrent evaluations; zero means GOMAXPROCS.
	Limit int
	// Maximize flips the search direction.
	Maximize bool
}

func NewGridSearch(axes ...Axis) (*GridSearch, error) {
	if len(axes) < 1 || len(axes) > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrAxes, len(axes))
	}
	for _, a := range axes {
		if !a.Name.Known() {
			return nil, fmt.Errorf("%w: %q", quantity.ErrUnknownQuantity, a.Name)
		}
		if !quantity.Compatible(a.Unit, a.Name.Unit()) {
			return nil, fmt.Errorf("%s in %q: %w", a.Name, a.Unit, quantity.ErrUnitMismatch)
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: %s has no values", ErrAxes, a.Name)
		}
	}
	return &GridSearch{axes: axes}, nil
}

// Points enumerates the grid, last axis varying fastest.
func (g *GridSearch) Points() []Params {
	var out []Params
	g.pointsRecursive(0, make(Params), &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current Params, out *[]Params) {
	if depth == len(g.axes) {
		p := make(Params, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	a := g.axes[depth]
	for _, val := range a.Values {
		current[a.Name] = val
		g.pointsRecursive(depth+1, current, out)
	}
}

// Evaluation is one scored grid point.
type Evaluation struct {
	Params    Params
	Objective float64
	Err       error
}

// Search evaluates every grid point concurrently and returns the best one
// together with the full table. Points whose evaluation fails or is not
// finite are skipped.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (Params, float64, []Evaluation, error) {
	points := g.Points()
	evals := make([]Evaluation, len(points))

	err := sim.RunCases(ctx, len(points), g.Limit, func(ctx context.Context, i int) error {
		val, err := obj(ctx, points[i])
		evals[i] = Evaluation{Params: points[i], Objective: val, Err: err}
		return ctx.Err()
	})
	if err != nil {
		return nil, 0, evals, err
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams Params
	for _, e := range evals {
		if e.Err != nil || math.IsNaN(e.Objective) || math.IsInf(e.Objective, 0) {
			continue
		}
		if (!g.Maximize && e.Objective < best) || (g.Maximize && e.Objective > best) {
			best = e.Objective
			bestParams = e.Params
		}
	}

	log.WithFields(log.Fields{"points": len(points), "best": best}).Debug("grid search complete")
	if bestParams == nil {
		return nil, 0, evals, ErrNoFeasible
	}
	return bestParams, best, evals, nil
}

// CaseObjective evaluates metric (node-mean, in unit u) on a copy of base
// with the axis values applied.
func (g *GridSearch) CaseObjective(base *config.Case, chain experiment.Chain, metric quantity.Name, u string) Objective {
	units := make(map[quantity.Name]string, len(g.axes))
	for _, a := range g.axes {
		units[a.Name] = a.Unit
	}
	reg := experiment.NewRegistry()

	return func(ctx context.Context, p Params) (float64, error) {
		c := base.Clone()
		for name, v := range p {
			c.Set(name, units[name], v)
		}
		exp := experiment.New(experiment.Config{Case: c, Chain: chain})
		if err := exp.Setup(reg); err != nil {
			return 0, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}
		return result.Metric(metric, u)
	}
}
