package sim

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/aerosim/internal/quantity"
)

// Alias promotes a component-local name under a different problem-level name.
type Alias struct {
	Local, Promoted quantity.Name
}

// Promote returns an Alias exposing local as promoted.
func Promote(local, promoted quantity.Name) Alias {
	return Alias{Local: local, Promoted: promoted}
}

type member struct {
	comp  Component
	decl  Declaration
	alias map[quantity.Name]quantity.Name
	jac   *Jacobian
}

func (m *member) global(local quantity.Name) quantity.Name {
	if g, ok := m.alias[local]; ok {
		return g
	}
	return local
}

type slot struct {
	data  []float64
	shape int
	owner string
}

// Problem owns the variable store for one batch of nn nodes and evaluates
// its components in the order they were added.
type Problem struct {
	nn       int
	opts     Options
	members  []*member
	slots    map[quantity.Name]*slot
	links    map[quantity.Name]quantity.Name
	defaults map[quantity.Name][]float64
	setUp    bool
}

func New(nn int) *Problem {
	return NewWithOptions(nn, DefaultOptions())
}

func NewWithOptions(nn int, opts Options) *Problem {
	return &Problem{
		nn:       nn,
		opts:     opts,
		members:  make([]*member, 0),
		slots:    make(map[quantity.Name]*slot),
		links:    make(map[quantity.Name]quantity.Name),
		defaults: make(map[quantity.Name][]float64),
	}
}

func (p *Problem) NumNodes() int { return p.nn }

// Add registers a component. Names are promoted as-is unless aliased.
func (p *Problem) Add(c Component, aliases ...Alias) {
	m := &member{comp: c, alias: make(map[quantity.Name]quantity.Name, len(aliases))}
	for _, a := range aliases {
		m.alias[a.Local] = a.Promoted
	}
	p.members = append(p.members, m)
	p.setUp = false
}

// Connect feeds input dst from variable src instead of its own slot.
func (p *Problem) Connect(src, dst quantity.Name) {
	p.links[dst] = src
	p.setUp = false
}

// SetInputDefault records the starting value of an input, converted from u.
func (p *Problem) SetInputDefault(name quantity.Name, u string, v ...float64) error {
	c, err := quantity.Value{Name: name, Unit: u, Data: v}.Canonical()
	if err != nil {
		return err
	}
	p.defaults[name] = c.Data
	p.setUp = false
	return nil
}

// Setup collects declarations, checks promotion and partial structure, and
// allocates the variable store.
func (p *Problem) Setup() error {
	p.slots = make(map[quantity.Name]*slot)
	declared := make(map[quantity.Name][]float64)

	for _, m := range p.members {
		m.decl = m.comp.Setup(p.nn)
		for local, g := range m.alias {
			if local.Unit() != g.Unit() {
				return fmt.Errorf("%s: promote %s as %s: %w", m.comp.Name(), local, g, quantity.ErrUnitMismatch)
			}
		}

		for _, v := range m.decl.Outputs {
			g := m.global(v.Name)
			s, ok := p.slots[g]
			if ok && s.owner != "" {
				return fmt.Errorf("%w: %s by %s and %s", ErrDuplicateOutput, g, s.owner, m.comp.Name())
			}
			if ok && s.shape != v.Shape {
				return fmt.Errorf("%w: %s declared with %d and %d", ErrShapeMismatch, g, s.shape, v.Shape)
			}
			if !ok {
				s = &slot{shape: v.Shape}
				p.slots[g] = s
			}
			s.owner = m.comp.Name()
		}

		for _, v := range m.decl.Inputs {
			g := m.global(v.Name)
			s, ok := p.slots[g]
			if ok && s.shape != v.Shape {
				return fmt.Errorf("%w: %s declared with %d and %d", ErrShapeMismatch, g, s.shape, v.Shape)
			}
			if !ok {
				p.slots[g] = &slot{shape: v.Shape}
			}
			if v.Default != nil {
				if _, seen := declared[g]; !seen {
					declared[g] = v.Default
				}
			}
		}

		log.WithFields(log.Fields{
			"component": m.comp.Name(),
			"inputs":    len(m.decl.Inputs),
			"outputs":   len(m.decl.Outputs),
		}).Debug("component set up")
	}

	for dst, src := range p.links {
		d, ok := p.slots[dst]
		if !ok {
			return fmt.Errorf("%w: connect target %s", ErrUnknownVariable, dst)
		}
		s, ok := p.slots[src]
		if !ok {
			return fmt.Errorf("%w: connect source %s", ErrUnknownVariable, src)
		}
		if d.owner != "" {
			return fmt.Errorf("%w: connect target %s is an output of %s", ErrDuplicateOutput, dst, d.owner)
		}
		if d.shape != s.shape {
			return fmt.Errorf("%w: connect %s (%d) -> %s (%d)", ErrShapeMismatch, src, s.shape, dst, d.shape)
		}
	}

	for name, s := range p.slots {
		s.data = make([]float64, s.shape)
		if s.owner != "" {
			continue
		}
		init, ok := p.defaults[name]
		if !ok {
			init = declared[name]
		}
		if err := fill(s.data, init, name); err != nil {
			return err
		}
	}

	for _, m := range p.members {
		d, ok := m.comp.(Differentiable)
		if !ok {
			m.jac = nil
			continue
		}
		jac, err := NewJacobian(d.DeclarePartials(p.nn))
		if err != nil {
			return &EvalError{Component: m.comp.Name(), Stage: "declare partials", Wrapped: err}
		}
		if err := m.checkPartials(jac); err != nil {
			return &EvalError{Component: m.comp.Name(), Stage: "declare partials", Wrapped: err}
		}
		m.jac = jac
	}

	p.setUp = true
	return nil
}

func (m *member) checkPartials(jac *Jacobian) error {
	shapes := func(vars []Var) map[quantity.Name]int {
		out := make(map[quantity.Name]int, len(vars))
		for _, v := range vars {
			out[v.Name] = v.Shape
		}
		return out
	}
	outs, ins := shapes(m.decl.Outputs), shapes(m.decl.Inputs)
	for _, pt := range jac.Partials() {
		no, ok := outs[pt.Of]
		if !ok {
			return fmt.Errorf("%w: partial of %s", ErrUnknownVariable, pt.Of)
		}
		ni, ok := ins[pt.Wrt]
		if !ok {
			return fmt.Errorf("%w: partial wrt %s", ErrUnknownVariable, pt.Wrt)
		}
		if pt.NOf != no || pt.NWrt != ni {
			return fmt.Errorf("%w: d(%s)/d(%s) is %dx%d, variables are %d and %d",
				ErrShapeMismatch, pt.Of, pt.Wrt, pt.NOf, pt.NWrt, no, ni)
		}
	}
	return nil
}

// fill broadcasts a single value or copies a full-length one.
func fill(dst, src []float64, name quantity.Name) error {
	switch {
	case len(src) == 0:
		for i := range dst {
			dst[i] = 1.0
		}
	case len(src) == 1:
		for i := range dst {
			dst[i] = src[0]
		}
	case len(src) == len(dst):
		copy(dst, src)
	default:
		return fmt.Errorf("%w: %s has %d values, want %d", ErrShapeMismatch, name, len(src), len(dst))
	}
	return nil
}

// SetVal assigns a variable, converting from unit u. A single value is
// broadcast across every node. Connected inputs read their source and
// cannot be assigned.
func (p *Problem) SetVal(name quantity.Name, u string, v ...float64) error {
	if !p.setUp {
		return ErrNotSetUp
	}
	if src, linked := p.links[name]; linked {
		return fmt.Errorf("%w: %s reads %s", ErrConnectedInput, name, src)
	}
	s, ok := p.slots[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	c, err := quantity.Value{Name: name, Unit: u, Data: v}.Canonical()
	if err != nil {
		return err
	}
	return fill(s.data, c.Data, name)
}

// Val returns a copy of a variable expressed in unit u.
func (p *Problem) Val(name quantity.Name, u string) ([]float64, error) {
	if !p.setUp {
		return nil, ErrNotSetUp
	}
	s, ok := p.slots[p.resolve(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return quantity.Convert(s.data, name.Unit(), u)
}

func (p *Problem) resolve(name quantity.Name) quantity.Name {
	if src, ok := p.links[name]; ok {
		return src
	}
	return name
}

// Vars snapshots the store in canonical units.
func (p *Problem) Vars() Vars {
	out := make(Vars, len(p.slots))
	for name := range p.slots {
		out[name] = append([]float64(nil), p.slots[p.resolve(name)].data...)
	}
	return out
}

// Inputs lists promoted variables that no component computes and nothing
// is connected to, i.e. the values a caller is expected to set.
func (p *Problem) Inputs() []quantity.Name {
	var names []quantity.Name
	for name, s := range p.slots {
		if _, linked := p.links[name]; s.owner == "" && !linked {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Outputs lists computed variables.
func (p *Problem) Outputs() []quantity.Name {
	var names []quantity.Name
	for name, s := range p.slots {
		if s.owner != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (p *Problem) views(m *member) (in, out Vars) {
	in = make(Vars, len(m.decl.Inputs))
	for _, v := range m.decl.Inputs {
		in[v.Name] = p.slots[p.resolve(m.global(v.Name))].data
	}
	out = make(Vars, len(m.decl.Outputs))
	for _, v := range m.decl.Outputs {
		out[v.Name] = p.slots[m.global(v.Name)].data
	}
	return in, out
}

// Run evaluates every component once, in order.
func (p *Problem) Run(ctx context.Context) error {
	if !p.setUp {
		return ErrNotSetUp
	}

	for _, m := range p.members {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		in, out := p.views(m)
		if err := m.comp.Compute(in, out); err != nil {
			return &EvalError{Component: m.comp.Name(), Stage: "compute", Wrapped: err}
		}

		for _, v := range m.decl.Outputs {
			s := p.slots[m.global(v.Name)]
			got := out[v.Name]
			if len(got) != len(s.data) {
				return &EvalError{Component: m.comp.Name(), Stage: "compute",
					Wrapped: fmt.Errorf("%w: %s has %d values, want %d", ErrShapeMismatch, v.Name, len(got), len(s.data))}
			}
			if len(got) > 0 && &got[0] != &s.data[0] {
				copy(s.data, got)
			}
			if p.opts.ValidateOutputs && !IsFinite(s.data) {
				return &EvalError{Component: m.comp.Name(), Stage: "compute",
					Wrapped: fmt.Errorf("%w: %s", ErrNonFinite, m.global(v.Name))}
			}
		}

		log.WithField("component", m.comp.Name()).Debug("computed")
	}
	return nil
}

// Linearize evaluates the analytic partials of every differentiable
// component at the current inputs and returns them under promoted names.
func (p *Problem) Linearize(ctx context.Context) (*Jacobian, error) {
	if !p.setUp {
		return nil, ErrNotSetUp
	}

	total := &Jacobian{blocks: make(map[partialKey]*Partial)}
	for _, m := range p.members {
		if m.jac == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		in, _ := p.views(m)
		if err := m.comp.(Differentiable).ComputePartials(in, m.jac); err != nil {
			return nil, &EvalError{Component: m.comp.Name(), Stage: "compute partials", Wrapped: err}
		}
		if err := total.merge(m.jac, m.global); err != nil {
			return nil, &EvalError{Component: m.comp.Name(), Stage: "compute partials", Wrapped: err}
		}
	}
	return total, nil
}

// Evaluate runs a single component on inputs given in canonical units and
// returns its outputs.
func Evaluate(ctx context.Context, c Component, nn int, in Vars) (Vars, error) {
	p := New(nn)
	p.Add(c)
	if err := p.Setup(); err != nil {
		return nil, err
	}
	for name, v := range in {
		if err := p.SetVal(name, name.Unit(), v...); err != nil {
			return nil, err
		}
	}
	if err := p.Run(ctx); err != nil {
		return nil, err
	}

	out := make(Vars)
	for _, name := range p.Outputs() {
		out[name] = append([]float64(nil), p.slots[name].data...)
	}
	return out, nil
}
