// Package aerostruct couples the Reynolds number component to a
// lifting-surface solver for a rectangular wing.
package aerostruct

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/mesh"
)

var (
	ErrNoMesh           = errors.New("aerostruct: surface has no mesh")
	ErrInvalidCondition = errors.New("aerostruct: invalid flight condition")
)

// Surface packages a lifting surface for the solver.
type Surface struct {
	Name     string
	Symmetry bool
	// SRefType selects the reference area: "wetted" or "projected".
	SRefType string
	Mesh     *mesh.Mesh
	TOverC   float64
	// CMaxT is the chordwise location of maximum thickness.
	CMaxT float64
}

// RefArea is the reference area the coefficients are based on.
func (s Surface) RefArea() float64 {
	if s.SRefType == "projected" {
		return s.Mesh.ProjectedArea(s.Symmetry)
	}
	return s.Mesh.Area(s.Symmetry)
}

// Condition is the flight state at one node, SI units, alpha in radians.
// Reynolds is based on the wing characteristic length.
type Condition struct {
	Alpha    float64
	Velocity float64
	Density  float64
	Reynolds float64
	Mach     float64
}

type Coefficients struct {
	CL, CD   float64
	CDi, CDv float64
	SRef     float64
}

// Solver evaluates aerodynamic coefficients of a surface. AeroPoint may
// call Solve from several goroutines at once.
type Solver interface {
	Solve(ctx context.Context, s Surface, c Condition) (Coefficients, error)
}

// Estimator is a closed-form lifting-line estimate: Helmbold lift slope,
// elliptic-loading induced drag scaled by span efficiency, and a flat-plate
// skin-friction viscous drag with a thickness form factor.
type Estimator struct {
	SpanEfficiency float64
}

func NewEstimator() *Estimator {
	return &Estimator{SpanEfficiency: 0.95}
}

func (e *Estimator) Solve(ctx context.Context, s Surface, c Condition) (Coefficients, error) {
	if err := ctx.Err(); err != nil {
		return Coefficients{}, err
	}
	if s.Mesh == nil {
		return Coefficients{}, fmt.Errorf("%w: %s", ErrNoMesh, s.Name)
	}
	if c.Mach < 0 || c.Mach >= 1 {
		return Coefficients{}, fmt.Errorf("%w: mach %g outside subsonic range", ErrInvalidCondition, c.Mach)
	}
	if c.Reynolds <= 0 {
		return Coefficients{}, fmt.Errorf("%w: reynolds number %g", ErrInvalidCondition, c.Reynolds)
	}

	ar := s.Mesh.AspectRatio(s.Symmetry)
	beta := math.Sqrt(1 - c.Mach*c.Mach)
	slope := 2 * math.Pi * ar / (2 + math.Sqrt(4+ar*ar*beta*beta))

	cl := slope * c.Alpha
	cdi := cl * cl / (math.Pi * e.SpanEfficiency * ar)

	ff := (1 + 0.6/s.CMaxT*s.TOverC + 100*math.Pow(s.TOverC, 4)) * 1.34 * math.Pow(c.Mach, 0.18)
	cdv := 2 * aero.SchoenherrCf(c.Reynolds) * ff

	return Coefficients{
		CL:   cl,
		CD:   cdi + cdv,
		CDi:  cdi,
		CDv:  cdv,
		SRef: s.RefArea(),
	}, nil
}
