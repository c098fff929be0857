// Package quantity names the physical quantities exchanged between analysis
// components and converts their values between unit systems.
//
// Every [Name] has exactly one canonical SI unit recorded in the catalog.
// Values entering the system in other units are converted once, at the
// boundary, with [Convert] or [Values.Set]; components only ever see
// canonical values.
//
//	vals := quantity.NewValues()
//	_ = vals.Set(quantity.Altitude, "ft", 2468)
//	h, _ := vals.Scalar(quantity.Altitude, "m") // 752.2464
package quantity
