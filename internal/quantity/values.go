package quantity

import (
	"fmt"
	"sort"
)

// Value is a named quantity with the unit its data is expressed in.
type Value struct {
	Name Name
	Unit string
	Data []float64
}

// Canonical converts the value into the catalog unit of its name.
func (v Value) Canonical() (Value, error) {
	if !v.Name.Known() {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownQuantity, v.Name)
	}
	data, err := Convert(v.Data, v.Unit, v.Name.Unit())
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", v.Name, err)
	}
	return Value{Name: v.Name, Unit: v.Name.Unit(), Data: data}, nil
}

// Values is a key-value store of aircraft and mission inputs. Data is held
// in canonical units; units are only named on the way in and out.
type Values struct {
	data map[Name][]float64
}

func NewValues() *Values {
	return &Values{data: make(map[Name][]float64)}
}

// Set stores data for name, converting from unit u.
func (v *Values) Set(name Name, u string, data ...float64) error {
	c, err := Value{Name: name, Unit: u, Data: data}.Canonical()
	if err != nil {
		return err
	}
	v.data[name] = c.Data
	return nil
}

// Get returns a copy of the stored data expressed in unit u.
func (v *Values) Get(name Name, u string) ([]float64, error) {
	data, ok := v.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no value", ErrUnknownQuantity, name)
	}
	out, err := Convert(data, name.Unit(), u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Scalar returns the first element of name in unit u.
func (v *Values) Scalar(name Name, u string) (float64, error) {
	data, err := v.Get(name, u)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("%s: empty value", name)
	}
	return data[0], nil
}

// ScalarOr is Scalar with a fallback for names that were never set.
func (v *Values) ScalarOr(name Name, u string, fallback float64) (float64, error) {
	if !v.Has(name) {
		return fallback, nil
	}
	return v.Scalar(name, u)
}

func (v *Values) Has(name Name) bool {
	_, ok := v.data[name]
	return ok
}

func (v *Values) Names() []Name {
	names := make([]Name, 0, len(v.data))
	for n := range v.data {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	c := NewValues()
	for n, d := range v.data {
		c.data[n] = append([]float64(nil), d...)
	}
	return c
}
