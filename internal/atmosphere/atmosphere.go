// Package atmosphere provides static air properties as a function of
// altitude.
package atmosphere

import "math"

const (
	// GasConstant is the specific gas constant of dry air [J/(kg K)].
	GasConstant = 287.05287
	// StandardGravity is g0 used for the geopotential altitude [m/s^2].
	StandardGravity = 9.80665
	// EarthRadius is the effective radius for the geopotential conversion [m].
	EarthRadius = 6356766.0
	// HeatCapacityRatio of air.
	HeatCapacityRatio = 1.4

	sutherlandBeta = 1.458e-6
	sutherlandS    = 110.4

	// MinAltitude and MaxAltitude bound the tabulated range (geometric, m).
	MinAltitude = -5000.0
	MaxAltitude = 86000.0
)

// Properties is the static state of the air at one altitude, SI units.
type Properties struct {
	Temperature      float64
	Pressure         float64
	Density          float64
	DynamicViscosity float64
	SpeedOfSound     float64
}

// KinematicViscosity is mu/rho.
func (p Properties) KinematicViscosity() float64 {
	return p.DynamicViscosity / p.Density
}

// Model maps geometric altitude [m] to air properties.
type Model interface {
	At(altitude float64) Properties
}

type layer struct {
	base     float64 // geopotential base height [m]
	lapse    float64 // [K/m]
	temp     float64 // base temperature [K]
	pressure float64 // base pressure [Pa]
}

// Standard1976 is the U.S. Standard Atmosphere 1976 up to 86 km. Altitudes
// outside [MinAltitude, MaxAltitude] extrapolate the nearest layer.
type Standard1976 struct {
	layers []layer
}

func NewStandard1976() *Standard1976 {
	bases := []float64{0, 11000, 20000, 32000, 47000, 51000, 71000}
	lapses := []float64{-0.0065, 0, 0.001, 0.0028, 0, -0.0028, -0.002}

	layers := make([]layer, len(bases))
	t, p := 288.15, 101325.0
	for i := range bases {
		layers[i] = layer{base: bases[i], lapse: lapses[i], temp: t, pressure: p}
		if i+1 < len(bases) {
			dh := bases[i+1] - bases[i]
			next := t + lapses[i]*dh
			p = pressureAt(p, t, next, lapses[i], dh)
			t = next
		}
	}
	return &Standard1976{layers: layers}
}

func pressureAt(pb, tb, t, lapse, dh float64) float64 {
	if lapse == 0 {
		return pb * math.Exp(-StandardGravity*dh/(GasConstant*tb))
	}
	return pb * math.Pow(tb/t, StandardGravity/(GasConstant*lapse))
}

// Geopotential converts geometric altitude to geopotential altitude.
func Geopotential(h float64) float64 {
	return EarthRadius * h / (EarthRadius + h)
}

// Valid reports whether h lies in the tabulated range.
func Valid(h float64) bool {
	return h >= MinAltitude && h <= MaxAltitude
}

func (s *Standard1976) At(h float64) Properties {
	hp := Geopotential(h)

	l := s.layers[0]
	for _, candidate := range s.layers[1:] {
		if hp < candidate.base {
			break
		}
		l = candidate
	}

	dh := hp - l.base
	t := l.temp + l.lapse*dh
	p := pressureAt(l.pressure, l.temp, t, l.lapse, dh)

	return Properties{
		Temperature:      t,
		Pressure:         p,
		Density:          p / (GasConstant * t),
		DynamicViscosity: Viscosity(t),
		SpeedOfSound:     SpeedOfSound(t),
	}
}

// Viscosity is Sutherland's law for air [kg/(m s)].
func Viscosity(t float64) float64 {
	return sutherlandBeta * math.Pow(t, 1.5) / (t + sutherlandS)
}

func SpeedOfSound(t float64) float64 {
	return math.Sqrt(HeatCapacityRatio * GasConstant * t)
}

var standard = NewStandard1976()

// Standard returns the shared 1976 model.
func Standard() Model { return standard }
