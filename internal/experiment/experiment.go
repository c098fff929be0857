package experiment

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

type Config struct {
	Case    *config.Case
	Chain   Chain
	Options sim.Options
}

// Experiment evaluates one case through a component chain.
type Experiment struct {
	cfg     Config
	problem *sim.Problem
}

func New(cfg Config) *Experiment {
	if cfg.Chain == "" {
		cfg.Chain = ChainStandard
	}
	return &Experiment{cfg: cfg}
}

// Setup assembles the chain and applies the case values as input defaults.
func (e *Experiment) Setup(reg *Registry) error {
	if e.cfg.Case == nil {
		return fmt.Errorf("experiment: no case")
	}
	if err := e.cfg.Case.Validate(); err != nil {
		return err
	}
	stages, err := reg.GetChain(e.cfg.Chain)
	if err != nil {
		return err
	}

	p := sim.NewWithOptions(e.cfg.Case.NumNodes, e.cfg.Options)
	for _, st := range stages {
		c, err := reg.GetComponent(st.Component, e.cfg.Case.Gravity)
		if err != nil {
			return err
		}
		p.Add(c, st.Aliases...)
	}

	values, err := e.cfg.Case.ToValues()
	if err != nil {
		return err
	}
	for _, name := range values.Names() {
		data, _ := values.Get(name, name.Unit())
		if err := p.SetInputDefault(name, name.Unit(), data...); err != nil {
			return err
		}
	}

	if err := p.Setup(); err != nil {
		return fmt.Errorf("%s: %w", e.cfg.Case.Name, err)
	}
	e.problem = p
	return nil
}

// Problem returns the assembled problem, or nil before Setup.
func (e *Experiment) Problem() *sim.Problem { return e.problem }

func (e *Experiment) Case() *config.Case { return e.cfg.Case }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.problem == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := e.problem.Run(ctx); err != nil {
		return nil, err
	}

	r := &Result{
		Case:     e.cfg.Case.Name,
		Chain:    e.cfg.Chain,
		NumNodes: e.problem.NumNodes(),
		Vars:     e.problem.Vars(),
		Inputs:   make(map[string]string, len(e.cfg.Case.Values)),
	}
	for k, v := range e.cfg.Case.Values {
		r.Inputs[k] = v.String()
	}
	if n := r.lowReynoldsNodes(); n > 0 {
		log.WithFields(log.Fields{
			"case":  r.Case,
			"chain": r.Chain,
			"nodes": n,
			"min":   aero.SchoenherrMinReynolds,
		}).Warn("reynolds number below the skin-friction fit range, drag is not meaningful")
	}

	log.WithFields(log.Fields{
		"case":  r.Case,
		"chain": r.Chain,
		"nodes": r.NumNodes,
	}).Debug("experiment complete")
	return r, nil
}

type Result struct {
	Case     string
	Chain    Chain
	NumNodes int
	Vars     sim.Vars
	Inputs   map[string]string
}

// lowReynoldsNodes counts nodes whose skin-friction drag was computed from a
// Reynolds number outside the Schoenherr fit.
func (r *Result) lowReynoldsNodes() int {
	if _, ok := r.Vars[quantity.SkinFrictionDrag]; !ok {
		return 0
	}
	n := 0
	for _, re := range r.Vars[quantity.ReynoldsNumber] {
		if re < aero.SchoenherrMinReynolds {
			n++
		}
	}
	return n
}

// Metric returns the node-mean of a variable in unit u.
func (r *Result) Metric(name quantity.Name, u string) (float64, error) {
	data, ok := r.Vars[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", sim.ErrUnknownVariable, name)
	}
	conv, err := quantity.Convert(data, name.Unit(), u)
	if err != nil {
		return 0, err
	}
	return floats.Sum(conv) / float64(len(conv)), nil
}

// SummaryNames are the outputs reported for a run.
var SummaryNames = []quantity.Name{
	quantity.ReynoldsNumber,
	quantity.DynamicPressure,
	quantity.LiftCoefficient,
	quantity.Lift,
	quantity.Weight,
	quantity.SkinFrictionDrag,
}

// Summary returns node-means of SummaryNames in canonical units, plus the
// lift to skin-friction drag ratio.
func (r *Result) Summary() map[string]float64 {
	out := make(map[string]float64, len(SummaryNames)+1)
	for _, name := range SummaryNames {
		if v, err := r.Metric(name, name.Unit()); err == nil {
			out[string(name)] = v
		}
	}
	if d := out[string(quantity.SkinFrictionDrag)]; d != 0 {
		out["lift_to_drag"] = out[string(quantity.Lift)] / d
	}
	return out
}

// Names lists the variables of the result in lexical order.
func (r *Result) Names() []quantity.Name {
	names := make([]quantity.Name, 0, len(r.Vars))
	for n := range r.Vars {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
