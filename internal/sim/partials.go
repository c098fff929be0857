package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/aerosim/internal/quantity"
)

// Pattern is the sparsity structure of a partial derivative block.
type Pattern int

const (
	// Dense blocks store every (row, col) entry in row-major order.
	Dense Pattern = iota
	// Diagonal blocks couple output node i to input node i only.
	Diagonal
	// Independent blocks are declared identically zero.
	Independent
)

func (p Pattern) String() string {
	switch p {
	case Dense:
		return "dense"
	case Diagonal:
		return "diagonal"
	case Independent:
		return "independent"
	}
	return fmt.Sprintf("pattern(%d)", int(p))
}

// Partial is the sparse-derivative record d(Of)/d(Wrt). Rows and Cols are
// the index mapping of the stored Values; for Diagonal blocks they must be
// the identity.
type Partial struct {
	Of, Wrt   quantity.Name
	Pattern   Pattern
	NOf, NWrt int
	Rows      []int
	Cols      []int
	Values    []float64
	Constant  bool
}

// DiagonalPartial declares a one-to-one block between two nn-long variables.
func DiagonalPartial(of, wrt quantity.Name, nn int) Partial {
	idx := make([]int, nn)
	for i := range idx {
		idx[i] = i
	}
	return Partial{
		Of: of, Wrt: wrt, Pattern: Diagonal,
		NOf: nn, NWrt: nn,
		Rows: idx, Cols: append([]int(nil), idx...),
		Values: make([]float64, nn),
	}
}

// DensePartial declares a full block; a scalar input gives a single column.
func DensePartial(of, wrt quantity.Name, nOf, nWrt int) Partial {
	return Partial{
		Of: of, Wrt: wrt, Pattern: Dense,
		NOf: nOf, NWrt: nWrt,
		Values: make([]float64, nOf*nWrt),
	}
}

// IndependentPartial declares that Of does not depend on Wrt.
func IndependentPartial(of, wrt quantity.Name, nOf, nWrt int) Partial {
	return Partial{Of: of, Wrt: wrt, Pattern: Independent, NOf: nOf, NWrt: nWrt}
}

// WithConstant fills the block with v and marks it as fixed at declaration.
func (p Partial) WithConstant(v float64) Partial {
	vals := make([]float64, len(p.Values))
	for i := range vals {
		vals[i] = v
	}
	p.Values = vals
	p.Constant = true
	return p
}

// Validate checks that the index mapping matches the declared pattern.
func (p *Partial) Validate() error {
	switch p.Pattern {
	case Diagonal:
		if p.NOf != p.NWrt {
			return fmt.Errorf("%w: d(%s)/d(%s) diagonal on %dx%d block", ErrSparsity, p.Of, p.Wrt, p.NOf, p.NWrt)
		}
		if len(p.Rows) != p.NOf || len(p.Cols) != p.NOf || len(p.Values) != p.NOf {
			return fmt.Errorf("%w: d(%s)/d(%s) index arrays do not cover %d nodes", ErrSparsity, p.Of, p.Wrt, p.NOf)
		}
		for i := range p.Rows {
			if p.Rows[i] != i || p.Cols[i] != i {
				return fmt.Errorf("%w: d(%s)/d(%s) entry %d maps (%d,%d)", ErrSparsity, p.Of, p.Wrt, i, p.Rows[i], p.Cols[i])
			}
		}
	case Dense:
		if p.Rows != nil || p.Cols != nil {
			return fmt.Errorf("%w: d(%s)/d(%s) dense block carries index arrays", ErrSparsity, p.Of, p.Wrt)
		}
		if len(p.Values) != p.NOf*p.NWrt {
			return fmt.Errorf("%w: d(%s)/d(%s) has %d values, want %d", ErrShapeMismatch, p.Of, p.Wrt, len(p.Values), p.NOf*p.NWrt)
		}
	case Independent:
		if len(p.Values) != 0 {
			return fmt.Errorf("%w: d(%s)/d(%s) independent block holds values", ErrSparsity, p.Of, p.Wrt)
		}
	default:
		return fmt.Errorf("%w: unknown pattern %v", ErrSparsity, p.Pattern)
	}
	return nil
}

// At returns entry (i, j) of the block.
func (p *Partial) At(i, j int) float64 {
	switch p.Pattern {
	case Diagonal:
		if i == j {
			return p.Values[i]
		}
	case Dense:
		return p.Values[i*p.NWrt+j]
	}
	return 0
}

// Dense expands the block into a gonum matrix.
func (p *Partial) Dense() *mat.Dense {
	m := mat.NewDense(p.NOf, p.NWrt, nil)
	switch p.Pattern {
	case Diagonal:
		for k, v := range p.Values {
			m.Set(p.Rows[k], p.Cols[k], v)
		}
	case Dense:
		for i := 0; i < p.NOf; i++ {
			for j := 0; j < p.NWrt; j++ {
				m.Set(i, j, p.Values[i*p.NWrt+j])
			}
		}
	}
	return m
}

type partialKey struct {
	of, wrt quantity.Name
}

// Jacobian is the table of partial blocks keyed by (output, input).
type Jacobian struct {
	blocks map[partialKey]*Partial
	order  []partialKey
}

// NewJacobian validates the declarations and takes a private copy of each.
func NewJacobian(parts []Partial) (*Jacobian, error) {
	j := &Jacobian{blocks: make(map[partialKey]*Partial, len(parts))}
	for _, p := range parts {
		if err := j.add(p); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *Jacobian) add(p Partial) error {
	if err := p.Validate(); err != nil {
		return err
	}
	k := partialKey{p.Of, p.Wrt}
	if _, dup := j.blocks[k]; dup {
		return fmt.Errorf("%w: d(%s)/d(%s) declared twice", ErrSparsity, p.Of, p.Wrt)
	}
	c := p
	c.Rows = append([]int(nil), p.Rows...)
	c.Cols = append([]int(nil), p.Cols...)
	c.Values = append([]float64(nil), p.Values...)
	if p.Pattern != Diagonal {
		c.Rows, c.Cols = nil, nil
	}
	if p.Pattern == Independent {
		c.Values = nil
	}
	j.blocks[k] = &c
	j.order = append(j.order, k)
	return nil
}

// Set overwrites the stored values of d(of)/d(wrt).
func (j *Jacobian) Set(of, wrt quantity.Name, v []float64) error {
	p, ok := j.blocks[partialKey{of, wrt}]
	if !ok {
		return fmt.Errorf("%w: d(%s)/d(%s)", ErrUndeclaredPartial, of, wrt)
	}
	if p.Pattern == Independent {
		return fmt.Errorf("%w: d(%s)/d(%s) is declared independent", ErrSparsity, of, wrt)
	}
	if len(v) != len(p.Values) {
		return fmt.Errorf("%w: d(%s)/d(%s) got %d values, want %d", ErrShapeMismatch, of, wrt, len(v), len(p.Values))
	}
	copy(p.Values, v)
	return nil
}

// Get returns the block for d(of)/d(wrt).
func (j *Jacobian) Get(of, wrt quantity.Name) (*Partial, bool) {
	p, ok := j.blocks[partialKey{of, wrt}]
	return p, ok
}

// Partials lists the blocks in declaration order.
func (j *Jacobian) Partials() []*Partial {
	out := make([]*Partial, len(j.order))
	for i, k := range j.order {
		out[i] = j.blocks[k]
	}
	return out
}

// Dense expands d(of)/d(wrt) into a matrix.
func (j *Jacobian) Dense(of, wrt quantity.Name) (*mat.Dense, error) {
	p, ok := j.Get(of, wrt)
	if !ok {
		return nil, fmt.Errorf("%w: d(%s)/d(%s)", ErrUndeclaredPartial, of, wrt)
	}
	return p.Dense(), nil
}

// merge copies other's blocks into j, renaming through rename.
func (j *Jacobian) merge(other *Jacobian, rename func(quantity.Name) quantity.Name) error {
	for _, p := range other.Partials() {
		c := *p
		c.Of, c.Wrt = rename(p.Of), rename(p.Wrt)
		if err := j.add(c); err != nil {
			return err
		}
	}
	return nil
}
