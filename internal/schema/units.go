package schema

import "strings"

// Unit is a physical unit string as written in the column unit keyword.
type Unit string

// Base unit vocabulary.
const (
	UnitDimensionless Unit = "1"
	UnitCount         Unit = "count"
	UnitMeters        Unit = "m"
	UnitSeconds       Unit = "s"
	UnitRadians       Unit = "rad"
	UnitDegrees       Unit = "deg"
	UnitElectrons     Unit = "electron"
	UnitPixels        Unit = "pix"
	UnitDecibels      Unit = "dB"
	UnitFrame         Unit = "frame"
	UnitHertz         Unit = "Hz"
	UnitArcsec        Unit = "arcsec"
)

var baseUnits = map[Unit]bool{
	UnitDimensionless: true,
	UnitCount:         true,
	UnitMeters:        true,
	UnitSeconds:       true,
	UnitRadians:       true,
	UnitDegrees:       true,
	UnitElectrons:     true,
	UnitPixels:        true,
	UnitDecibels:      true,
	UnitFrame:         true,
	UnitHertz:         true,
	UnitArcsec:        true,
}

// Mul joins units into a product, e.g. Mul(UnitRadians, Inv(UnitPixels)) is "rad*pix^-1".
func Mul(units ...Unit) Unit {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = string(u)
	}
	return Unit(strings.Join(parts, "*"))
}

// Inv returns the inverse of a base unit.
func Inv(u Unit) Unit {
	return u + "^-1"
}

// Terms splits a composite unit into its factors.
func (u Unit) Terms() []string {
	if u == "" {
		return nil
	}
	return strings.Split(string(u), "*")
}

// Valid reports whether every factor of u is a base unit, optionally inverted.
func (u Unit) Valid() bool {
	terms := u.Terms()
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		base := strings.TrimSuffix(term, "^-1")
		if !baseUnits[Unit(base)] {
			return false
		}
		// a dimensionless factor only makes sense alone
		if Unit(base) == UnitDimensionless && len(terms) > 1 {
			return false
		}
	}
	return true
}
