package aerostruct

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/mesh"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// DefaultAlpha is the angle of attack used when the values carry none [deg].
const DefaultAlpha = 5.0

type Options struct {
	// Mesh overrides the default 2x5 symmetric rectangular mesh. Span and
	// Chord are always taken from the values.
	Mesh   mesh.Options
	Solver Solver
	// SRefType is "wetted" or "projected".
	SRefType string
}

func DefaultOptions() Options {
	return Options{
		Mesh:     mesh.Options{NumX: 2, NumY: 5, Symmetry: true},
		Solver:   NewEstimator(),
		SRefType: "wetted",
	}
}

// Adapter evaluates wing CL and CD for a batch of flight conditions.
type Adapter struct {
	Surface Surface
	problem *sim.Problem
}

// Result holds the per-node solver outputs.
type Result struct {
	Reynolds []float64
	Mach     []float64
	CL, CD   []float64
	CDi, CDv []float64
	SRef     float64
}

func requireScalar(v *quantity.Values, name quantity.Name) (float64, error) {
	x, err := v.Scalar(name, name.Unit())
	if err != nil {
		return 0, fmt.Errorf("aerostruct: %w", err)
	}
	return x, nil
}

// NewAdapter reads altitude, velocity, root chord, span, thickness-to-chord
// and max-thickness location from values. The root chord doubles as the
// Reynolds characteristic length.
func NewAdapter(values *quantity.Values, nn int, opts Options) (*Adapter, error) {
	chord, err := requireScalar(values, quantity.WingRootChord)
	if err != nil {
		return nil, err
	}
	span, err := requireScalar(values, quantity.WingSpan)
	if err != nil {
		return nil, err
	}
	tc, err := requireScalar(values, quantity.WingThicknessToChord)
	if err != nil {
		return nil, err
	}
	cmaxt, err := requireScalar(values, quantity.WingMaxThicknessLocation)
	if err != nil {
		return nil, err
	}

	mo := opts.Mesh
	mo.Span, mo.Chord = span, chord
	m, err := mesh.Rect(mo)
	if err != nil {
		return nil, err
	}

	surface := Surface{
		Name:     "wing",
		Symmetry: mo.Symmetry,
		SRefType: opts.SRefType,
		Mesh:     m,
		TOverC:   tc,
		CMaxT:    cmaxt,
	}
	if opts.Solver == nil {
		opts.Solver = NewEstimator()
	}

	p := sim.New(nn)
	p.Add(aero.NewReynoldsNumber())
	p.Add(NewAeroPoint(surface, opts.Solver))
	p.Connect(quantity.ReynoldsNumber, quantity.WingReynoldsNumber)

	for _, name := range []quantity.Name{quantity.Altitude, quantity.Velocity} {
		data, err := values.Get(name, name.Unit())
		if err != nil {
			return nil, fmt.Errorf("aerostruct: %w", err)
		}
		if err := p.SetInputDefault(name, name.Unit(), data...); err != nil {
			return nil, err
		}
	}
	if err := p.SetInputDefault(quantity.WingCharacteristicLength, "m", chord); err != nil {
		return nil, err
	}

	alpha := []float64{DefaultAlpha}
	unit := "deg"
	if values.Has(quantity.AngleOfAttack) {
		alpha, _ = values.Get(quantity.AngleOfAttack, "rad")
		unit = "rad"
	}
	if err := p.SetInputDefault(quantity.AngleOfAttack, unit, alpha...); err != nil {
		return nil, err
	}

	if err := p.Setup(); err != nil {
		return nil, err
	}
	return &Adapter{Surface: surface, problem: p}, nil
}

// Problem exposes the underlying problem so callers can set values
// between runs.
func (a *Adapter) Problem() *sim.Problem { return a.problem }

func (a *Adapter) Run(ctx context.Context) (*Result, error) {
	if err := a.problem.Run(ctx); err != nil {
		return nil, err
	}

	v := a.problem.Vars()
	r := &Result{
		Reynolds: v[quantity.WingReynoldsNumber],
		Mach:     v[quantity.MachNumber],
		CL:       v[quantity.LiftCoefficient],
		CD:       v[quantity.DragCoefficient],
		CDi:      v[quantity.InducedDrag],
		CDv:      v[quantity.ViscousDrag],
		SRef:     a.Surface.RefArea(),
	}
	for i := range r.CL {
		log.WithFields(log.Fields{
			"node": i,
			"Re":   r.Reynolds[i],
			"CL":   r.CL[i],
			"CD":   r.CD[i],
		}).Debug("aero point solved")
	}
	return r, nil
}

// Builder creates adapters for a named analysis.
type Builder struct {
	Name    string
	Options Options
}

func NewBuilder() *Builder {
	return &Builder{Name: "aero_analysis", Options: DefaultOptions()}
}

func (b *Builder) Build(values *quantity.Values, nn int) (*Adapter, error) {
	a, err := NewAdapter(values, nn, b.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	return a, nil
}
