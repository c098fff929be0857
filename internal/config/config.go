package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/aerostruct"
	"github.com/san-kum/aerosim/internal/mesh"
	"github.com/san-kum/aerosim/internal/quantity"
)

const (
	DefaultNumNodes       = 1
	DefaultSpanEfficiency = 0.95
	DefaultSRefType       = "wetted"
)

var ErrInvalidValue = errors.New("config: invalid value")

// ValueSpec is one input value with its unit. In YAML it is written either
// as a mapping or as the shorthand "2468 ft" / "70, 85, 101 ft/s".
type ValueSpec struct {
	Value  float64   `yaml:"value,omitempty"`
	Values []float64 `yaml:"values,omitempty"`
	Units  string    `yaml:"units,omitempty"`
}

// ParseValueSpec reads a whitespace or comma separated list of numbers
// followed by an optional unit.
func ParseValueSpec(s string) (ValueSpec, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	var nums []float64
	i := 0
	for ; i < len(fields); i++ {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			break
		}
		nums = append(nums, x)
	}
	if len(nums) == 0 {
		return ValueSpec{}, fmt.Errorf("%w: %q has no number", ErrInvalidValue, s)
	}

	v := ValueSpec{Units: strings.Join(fields[i:], "")}
	if len(nums) == 1 {
		v.Value = nums[0]
	} else {
		v.Values = nums
	}
	return v, nil
}

func (v ValueSpec) Data() []float64 {
	if len(v.Values) > 0 {
		return append([]float64(nil), v.Values...)
	}
	return []float64{v.Value}
}

func (v ValueSpec) String() string {
	parts := make([]string, 0, len(v.Values))
	for _, x := range v.Data() {
		parts = append(parts, strconv.FormatFloat(x, 'g', -1, 64))
	}
	s := strings.Join(parts, ", ")
	if v.Units != "" {
		s += " " + v.Units
	}
	return s
}

func (v *ValueSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseValueSpec(node.Value)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}
	type plain ValueSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = ValueSpec(p)
	return nil
}

func (v ValueSpec) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

type MeshConfig struct {
	NumX            int     `yaml:"num_x"`
	NumY            int     `yaml:"num_y"`
	Symmetry        bool    `yaml:"symmetry"`
	SpanCosSpacing  float64 `yaml:"span_cos_spacing"`
	ChordCosSpacing float64 `yaml:"chord_cos_spacing"`
}

type SolverConfig struct {
	SpanEfficiency float64 `yaml:"span_efficiency"`
	SRefType       string  `yaml:"s_ref_type"`
}

// Case is one analysis setup: a node count and the inputs by quantity name.
type Case struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	NumNodes    int                  `yaml:"num_nodes"`
	Gravity     float64              `yaml:"gravity"`
	Values      map[string]ValueSpec `yaml:"values"`
	Mesh        MeshConfig           `yaml:"mesh"`
	Solver      SolverConfig         `yaml:"solver"`
}

func DefaultCase() *Case {
	return &Case{
		Name:     "custom",
		NumNodes: DefaultNumNodes,
		Gravity:  aero.StandardGravity,
		Values:   make(map[string]ValueSpec),
		Mesh:     MeshConfig{NumX: 2, NumY: 5, Symmetry: true},
		Solver:   SolverConfig{SpanEfficiency: DefaultSpanEfficiency, SRefType: DefaultSRefType},
	}
}

// Load reads a YAML case, or an INI case when the file ends in .ini.
func Load(path string) (*Case, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return loadINI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultCase()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func Save(path string, c *Case) error {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return saveINI(path, c)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Set stores a value, replacing any previous one.
func (c *Case) Set(name quantity.Name, units string, data ...float64) {
	v := ValueSpec{Units: units}
	if len(data) == 1 {
		v.Value = data[0]
	} else {
		v.Values = append([]float64(nil), data...)
	}
	if c.Values == nil {
		c.Values = make(map[string]ValueSpec)
	}
	c.Values[string(name)] = v
}

func (c *Case) Validate() error {
	if c.NumNodes < 1 {
		return fmt.Errorf("%w: num_nodes=%d", ErrInvalidValue, c.NumNodes)
	}
	for key, v := range c.Values {
		name, err := quantity.Lookup(key)
		if err != nil {
			return err
		}
		if n := len(v.Data()); n != 1 && n != c.NumNodes {
			return fmt.Errorf("%w: %s has %d values for %d nodes", ErrInvalidValue, name, n, c.NumNodes)
		}
		if v.Units != "" && !quantity.Compatible(v.Units, name.Unit()) {
			return fmt.Errorf("%w: %s in %q", quantity.ErrUnitMismatch, name, v.Units)
		}
	}
	return nil
}

// ToValues converts the case inputs to canonical units.
func (c *Case) ToValues() (*quantity.Values, error) {
	out := quantity.NewValues()
	for key, v := range c.Values {
		name, err := quantity.Lookup(key)
		if err != nil {
			return nil, err
		}
		units := v.Units
		if units == "" {
			units = name.Unit()
		}
		if err := out.Set(name, units, v.Data()...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Case) MeshOptions() mesh.Options {
	return mesh.Options{
		NumX:            c.Mesh.NumX,
		NumY:            c.Mesh.NumY,
		Symmetry:        c.Mesh.Symmetry,
		SpanCosSpacing:  c.Mesh.SpanCosSpacing,
		ChordCosSpacing: c.Mesh.ChordCosSpacing,
	}
}

func (c *Case) AdapterOptions() aerostruct.Options {
	opts := aerostruct.DefaultOptions()
	opts.Mesh = c.MeshOptions()
	if c.Solver.SRefType != "" {
		opts.SRefType = c.Solver.SRefType
	}
	if c.Solver.SpanEfficiency > 0 {
		opts.Solver = &aerostruct.Estimator{SpanEfficiency: c.Solver.SpanEfficiency}
	}
	return opts
}

// Clone returns a deep copy.
func (c *Case) Clone() *Case {
	cp := *c
	cp.Values = make(map[string]ValueSpec, len(c.Values))
	for k, v := range c.Values {
		v.Values = append([]float64(nil), v.Values...)
		cp.Values[k] = v
	}
	return &cp
}
