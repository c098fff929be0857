package quantity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/unit"
)

var (
	// ErrUnknownQuantity indicates a name missing from the catalog.
	ErrUnknownQuantity = errors.New("quantity: unknown quantity")

	// ErrUnknownUnit indicates a unit string missing from the unit table.
	ErrUnknownUnit = errors.New("quantity: unknown unit")

	// ErrUnitMismatch indicates a conversion between different dimensions.
	ErrUnitMismatch = errors.New("quantity: incompatible units")
)

// unitDef maps a unit string onto SI: si = value*scale + offset. The
// dimensions live on the gonum unit so compatibility checks stay in one place.
type unitDef struct {
	si     *unit.Unit
	offset float64
}

func def(scale float64, d unit.Dimensions) unitDef {
	return unitDef{si: unit.New(scale, d)}
}

var (
	dimLength      = unit.Dimensions{unit.LengthDim: 1}
	dimArea        = unit.Dimensions{unit.LengthDim: 2}
	dimSpeed       = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
	dimTemperature = unit.Dimensions{unit.TemperatureDim: 1}
	dimDensity     = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	dimViscosity   = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -1}
	dimKinematic   = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	dimPressure    = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
	dimForce       = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -2}
	dimMass        = unit.Dimensions{unit.MassDim: 1}
	dimAngle       = unit.Dimensions{unit.AngleDim: 1}
	dimNone        = unit.Dimensions{}
)

const (
	foot = 0.3048
	slug = 14.59390293720636
	lbm  = 0.45359237
	lbf  = 4.4482216152605
)

var units = map[string]unitDef{
	"m":   def(1, dimLength),
	"km":  def(1000, dimLength),
	"ft":  def(foot, dimLength),
	"nmi": def(1852, dimLength),

	"m**2":  def(1, dimArea),
	"ft**2": def(foot*foot, dimArea),

	"m/s":  def(1, dimSpeed),
	"ft/s": def(foot, dimSpeed),
	"kn":   def(1852.0/3600.0, dimSpeed),

	"K":    def(1, dimTemperature),
	"degR": def(5.0/9.0, dimTemperature),
	"degC": {si: unit.New(1, dimTemperature), offset: 273.15},
	"degF": {si: unit.New(5.0/9.0, dimTemperature), offset: 273.15 - 32*5.0/9.0},

	"kg/m**3":    def(1, dimDensity),
	"slug/ft**3": def(slug/(foot*foot*foot), dimDensity),

	"kg/m/s":      def(1, dimViscosity),
	"Pa*s":        def(1, dimViscosity),
	"slug/(ft*s)": def(slug/foot, dimViscosity),

	"m**2/s":  def(1, dimKinematic),
	"ft**2/s": def(foot*foot, dimKinematic),

	"N/m**2": def(1, dimPressure),
	"Pa":     def(1, dimPressure),
	"psf":    def(lbf/(foot*foot), dimPressure),

	"N":   def(1, dimForce),
	"lbf": def(lbf, dimForce),

	"kg":  def(1, dimMass),
	"lb":  def(lbm, dimMass),
	"lbm": def(lbm, dimMass),

	"rad": def(1, dimAngle),
	"deg": def(math.Pi/180, dimAngle),

	"unitless": def(1, dimNone),
}

func lookupUnit(u string) (unitDef, error) {
	d, ok := units[u]
	if !ok {
		return unitDef{}, fmt.Errorf("%w: %q", ErrUnknownUnit, u)
	}
	return d, nil
}

// Compatible reports whether values in unit a can be expressed in unit b.
func Compatible(a, b string) bool {
	da, err := lookupUnit(a)
	if err != nil {
		return false
	}
	db, err := lookupUnit(b)
	if err != nil {
		return false
	}
	return unit.DimensionsMatch(da.si, db.si)
}

// Convert returns a copy of v expressed in unit to. An empty unit string on
// either side is read as "unitless".
func Convert(v []float64, from, to string) ([]float64, error) {
	if from == "" {
		from = "unitless"
	}
	if to == "" {
		to = "unitless"
	}
	out := make([]float64, len(v))
	if from == to {
		copy(out, v)
		return out, nil
	}

	src, err := lookupUnit(from)
	if err != nil {
		return nil, err
	}
	dst, err := lookupUnit(to)
	if err != nil {
		return nil, err
	}
	if !unit.DimensionsMatch(src.si, dst.si) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnitMismatch, from, to)
	}

	for i, x := range v {
		si := x*src.si.Value() + src.offset
		out[i] = (si - dst.offset) / dst.si.Value()
	}
	return out, nil
}

// ConvertScalar is Convert for a single value.
func ConvertScalar(x float64, from, to string) (float64, error) {
	out, err := Convert([]float64{x}, from, to)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Units lists the accepted unit strings.
func Units() []string {
	names := make([]string, 0, len(units))
	for u := range units {
		names = append(names, u)
	}
	return names
}
