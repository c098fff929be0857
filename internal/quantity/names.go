package quantity

import (
	"fmt"
	"sort"
)

// Name identifies a physical quantity. The string form follows the
// hierarchical naming used by aircraft sizing tools so case files stay
// readable.
type Name string

const (
	Altitude           Name = "altitude"
	Velocity           Name = "velocity"
	MachNumber         Name = "mach"
	Temperature        Name = "temperature"
	Density            Name = "density"
	StaticPressure     Name = "static_pressure"
	SpeedOfSound       Name = "speed_of_sound"
	DynamicViscosity   Name = "dynamic_viscosity"
	KinematicViscosity Name = "kinematic_viscosity"
	DynamicPressure    Name = "dynamic_pressure"
	ReynoldsNumber     Name = "Reynolds_number"

	Mass             Name = "mass"
	Weight           Name = "weight"
	Lift             Name = "lift"
	LiftCoefficient  Name = "CL"
	DragCoefficient  Name = "CD"
	SkinFrictionDrag Name = "skin_friction_drag"
	AngleOfAttack    Name = "angle_of_attack"

	WingArea                 Name = "aircraft:wing:area"
	WingCharacteristicLength Name = "aircraft:wing:characteristic_length"
	WingSpan                 Name = "aircraft:wing:span"
	WingRootChord            Name = "aircraft:wing:root_chord"
	WingThicknessToChord     Name = "aircraft:wing:thickness_to_chord"
	WingMaxThicknessLocation Name = "aircraft:wing:max_thickness_location"

	// WingReynoldsNumber is the Reynolds number boundary condition handed to
	// the lifting-surface solver.
	WingReynoldsNumber Name = "aero_point:wing:Re"
	InducedDrag        Name = "aero_point:CDi"
	ViscousDrag        Name = "aero_point:CDv"

	GrossMass Name = "mission:design:gross_mass"
)

// Info is the catalog record for a quantity.
type Info struct {
	Name Name
	Unit string
	Desc string
}

var catalog = map[Name]Info{
	Altitude:           {Altitude, "m", "geometric altitude above mean sea level"},
	Velocity:           {Velocity, "m/s", "true airspeed"},
	MachNumber:         {MachNumber, "unitless", "flight Mach number"},
	Temperature:        {Temperature, "K", "static air temperature"},
	Density:            {Density, "kg/m**3", "static air density"},
	StaticPressure:     {StaticPressure, "Pa", "static air pressure"},
	SpeedOfSound:       {SpeedOfSound, "m/s", "local speed of sound"},
	DynamicViscosity:   {DynamicViscosity, "kg/m/s", "dynamic viscosity of air"},
	KinematicViscosity: {KinematicViscosity, "m**2/s", "kinematic viscosity of air"},
	DynamicPressure:    {DynamicPressure, "N/m**2", "freestream dynamic pressure"},
	ReynoldsNumber:     {ReynoldsNumber, "unitless", "Reynolds number on the wing characteristic length"},

	Mass:             {Mass, "kg", "instantaneous vehicle mass"},
	Weight:           {Weight, "N", "vehicle weight, equal to lift in equilibrium flight"},
	Lift:             {Lift, "N", "lift force"},
	LiftCoefficient:  {LiftCoefficient, "unitless", "lift coefficient"},
	DragCoefficient:  {DragCoefficient, "unitless", "total drag coefficient"},
	SkinFrictionDrag: {SkinFrictionDrag, "N", "wing skin-friction drag"},
	AngleOfAttack:    {AngleOfAttack, "rad", "wing angle of attack"},

	WingArea:                 {WingArea, "m**2", "wing reference area"},
	WingCharacteristicLength: {WingCharacteristicLength, "m", "wing characteristic length"},
	WingSpan:                 {WingSpan, "m", "wing span"},
	WingRootChord:            {WingRootChord, "m", "wing root chord"},
	WingThicknessToChord:     {WingThicknessToChord, "unitless", "wing thickness-to-chord ratio"},
	WingMaxThicknessLocation: {WingMaxThicknessLocation, "unitless", "chordwise location of maximum thickness"},

	WingReynoldsNumber: {WingReynoldsNumber, "unitless", "Reynolds number applied to the lifting surface"},
	InducedDrag:        {InducedDrag, "unitless", "induced drag coefficient"},
	ViscousDrag:        {ViscousDrag, "unitless", "viscous drag coefficient"},

	GrossMass: {GrossMass, "kg", "design gross mass"},
}

// Lookup resolves a quantity by its string name.
func Lookup(s string) (Name, error) {
	n := Name(s)
	if _, ok := catalog[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuantity, s)
	}
	return n, nil
}

// Known reports whether n is in the catalog.
func (n Name) Known() bool {
	_, ok := catalog[n]
	return ok
}

// Unit returns the canonical unit of n, or "" for names outside the catalog.
func (n Name) Unit() string {
	return catalog[n].Unit
}

func (n Name) Info() Info {
	return catalog[n]
}

func (n Name) String() string { return string(n) }

// Names lists the catalog in lexical order.
func Names() []Name {
	names := make([]Name, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
