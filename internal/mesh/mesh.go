// Package mesh generates the planar lifting-surface meshes consumed by the
// aerostructural solver.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrPanelCount indicates a station count that cannot form panels.
	ErrPanelCount = errors.New("mesh: invalid panel count")
	// ErrGeometry indicates a non-positive span or chord.
	ErrGeometry = errors.New("mesh: invalid geometry")
)

// Options describe a rectangular wing. Span is the full tip-to-tip span.
// The spacing weights blend uniform (0) and cosine (1) station spacing.
type Options struct {
	NumX            int
	NumY            int
	Span            float64
	Chord           float64
	Symmetry        bool
	SpanCosSpacing  float64
	ChordCosSpacing float64
}

func DefaultOptions() Options {
	return Options{NumX: 2, NumY: 5, Span: 10, Chord: 1, Symmetry: true}
}

// Mesh holds NumX chordwise by NumY spanwise points; x is streamwise, y
// spanwise, z up.
type Mesh struct {
	NumX, NumY int
	Points     [][]r3.Vec
}

// Rect builds a flat rectangular mesh. NumY counts full-span stations and
// must be odd; with Symmetry only the left half (y <= 0) is kept.
func Rect(opts Options) (*Mesh, error) {
	if opts.NumX < 2 {
		return nil, fmt.Errorf("%w: num_x=%d, need at least 2", ErrPanelCount, opts.NumX)
	}
	if opts.NumY < 3 || opts.NumY%2 == 0 {
		return nil, fmt.Errorf("%w: num_y=%d must be odd and at least 3", ErrPanelCount, opts.NumY)
	}
	if opts.Span <= 0 || opts.Chord <= 0 {
		return nil, fmt.Errorf("%w: span=%g chord=%g", ErrGeometry, opts.Span, opts.Chord)
	}

	ys := spanStations(opts.NumY, opts.Span, opts.SpanCosSpacing)
	xs := chordStations(opts.NumX, opts.Chord, opts.ChordCosSpacing)

	if opts.Symmetry {
		ys = ys[:(opts.NumY+1)/2]
	}

	m := &Mesh{NumX: len(xs), NumY: len(ys), Points: make([][]r3.Vec, len(xs))}
	for i, x := range xs {
		m.Points[i] = make([]r3.Vec, len(ys))
		for j, y := range ys {
			m.Points[i][j] = r3.Vec{X: x, Y: y}
		}
	}
	return m, nil
}

func spanStations(ny int, span, cosWeight float64) []float64 {
	ny2 := (ny + 1) / 2

	uniform := floats.Span(make([]float64, ny2), 0.5, 0)
	beta := floats.Span(make([]float64, ny2), 0, math.Pi/2)
	half := make([]float64, ny2)
	for i := range half {
		half[i] = cosWeight*0.5*math.Cos(beta[i]) + (1-cosWeight)*uniform[i]
	}

	// tip to root on the left, then root to tip on the right
	full := make([]float64, 0, 2*ny2-1)
	for _, y := range half[:ny2-1] {
		full = append(full, -y*span)
	}
	for i := ny2 - 1; i >= 0; i-- {
		full = append(full, half[i]*span)
	}
	return full
}

func chordStations(nx int, chord, cosWeight float64) []float64 {
	if nx <= 2 {
		return []float64{0, chord}
	}
	uniform := floats.Span(make([]float64, nx), 0, 1)
	beta := floats.Span(make([]float64, nx), 0, math.Pi)
	xs := make([]float64, nx)
	for i := range xs {
		cosine := 0.5 - 0.5*math.Cos(beta[i])
		xs[i] = (cosWeight*cosine + (1-cosWeight)*uniform[i]) * chord
	}
	return xs
}

func (m *Mesh) At(i, j int) r3.Vec { return m.Points[i][j] }

// panelNormals returns the unnormalised normal of each panel; its length is
// twice the panel area.
func (m *Mesh) panelNormals() []r3.Vec {
	var out []r3.Vec
	for i := 0; i+1 < m.NumX; i++ {
		for j := 0; j+1 < m.NumY; j++ {
			d1 := r3.Sub(m.Points[i+1][j+1], m.Points[i][j])
			d2 := r3.Sub(m.Points[i][j+1], m.Points[i+1][j])
			out = append(out, r3.Cross(d1, d2))
		}
	}
	return out
}

// Area is the wetted panel area, doubled for a symmetric half mesh.
func (m *Mesh) Area(symmetry bool) float64 {
	var a float64
	for _, n := range m.panelNormals() {
		a += 0.5 * r3.Norm(n)
	}
	return mirror(a, symmetry)
}

// ProjectedArea is the area projected onto the x-y plane.
func (m *Mesh) ProjectedArea(symmetry bool) float64 {
	var a float64
	for _, n := range m.panelNormals() {
		a += 0.5 * math.Abs(n.Z)
	}
	return mirror(a, symmetry)
}

// SpanLength is the leading-edge extent in y.
func (m *Mesh) SpanLength(symmetry bool) float64 {
	ys := make([]float64, m.NumY)
	for j := range ys {
		ys[j] = m.Points[0][j].Y
	}
	return mirror(floats.Max(ys)-floats.Min(ys), symmetry)
}

func (m *Mesh) MeanChord(symmetry bool) float64 {
	return m.ProjectedArea(symmetry) / m.SpanLength(symmetry)
}

// AspectRatio is b^2/S on the projected area.
func (m *Mesh) AspectRatio(symmetry bool) float64 {
	b := m.SpanLength(symmetry)
	return b * b / m.ProjectedArea(symmetry)
}

func mirror(v float64, symmetry bool) float64 {
	if symmetry {
		return 2 * v
	}
	return v
}
