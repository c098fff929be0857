package config

import (
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"
)

// Keys such as aircraft:wing:area contain colons, so only '=' separates
// key from value.
var iniOptions = ini.LoadOptions{KeyValueDelimiters: "="}

func loadINI(path string) (*Case, error) {
	file, err := ini.LoadSources(iniOptions, path)
	if err != nil {
		return nil, err
	}

	def := DefaultCase()
	sec := file.Section("case")
	c := &Case{
		Name:        sec.Key("name").MustString(def.Name),
		Description: sec.Key("description").String(),
		NumNodes:    sec.Key("num_nodes").MustInt(def.NumNodes),
		Gravity:     sec.Key("gravity").MustFloat64(def.Gravity),
		Values:      make(map[string]ValueSpec),
	}

	m := file.Section("mesh")
	c.Mesh = MeshConfig{
		NumX:            m.Key("num_x").MustInt(def.Mesh.NumX),
		NumY:            m.Key("num_y").MustInt(def.Mesh.NumY),
		Symmetry:        m.Key("symmetry").MustBool(def.Mesh.Symmetry),
		SpanCosSpacing:  m.Key("span_cos_spacing").MustFloat64(0),
		ChordCosSpacing: m.Key("chord_cos_spacing").MustFloat64(0),
	}

	s := file.Section("solver")
	c.Solver = SolverConfig{
		SpanEfficiency: s.Key("span_efficiency").MustFloat64(def.Solver.SpanEfficiency),
		SRefType:       s.Key("s_ref_type").MustString(def.Solver.SRefType),
	}

	for _, key := range file.Section("values").Keys() {
		v, err := ParseValueSpec(key.String())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Name(), err)
		}
		c.Values[key.Name()] = v
	}
	return c, c.Validate()
}

func saveINI(path string, c *Case) error {
	file := ini.Empty(iniOptions)

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"case", [][2]string{
			{"name", c.Name},
			{"description", c.Description},
			{"num_nodes", strconv.Itoa(c.NumNodes)},
			{"gravity", strconv.FormatFloat(c.Gravity, 'g', -1, 64)},
		}},
		{"mesh", [][2]string{
			{"num_x", strconv.Itoa(c.Mesh.NumX)},
			{"num_y", strconv.Itoa(c.Mesh.NumY)},
			{"symmetry", strconv.FormatBool(c.Mesh.Symmetry)},
			{"span_cos_spacing", strconv.FormatFloat(c.Mesh.SpanCosSpacing, 'g', -1, 64)},
			{"chord_cos_spacing", strconv.FormatFloat(c.Mesh.ChordCosSpacing, 'g', -1, 64)},
		}},
		{"solver", [][2]string{
			{"span_efficiency", strconv.FormatFloat(c.Solver.SpanEfficiency, 'g', -1, 64)},
			{"s_ref_type", c.Solver.SRefType},
		}},
	}

	for _, s := range sections {
		sec, err := file.NewSection(s.name)
		if err != nil {
			return err
		}
		for _, kv := range s.keys {
			if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
				return err
			}
		}
	}

	values, err := file.NewSection("values")
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(c.Values) {
		if _, err := values.NewKey(name, c.Values[name].String()); err != nil {
			return err
		}
	}
	return file.SaveTo(path)
}
