// Package unit converts quantities between named units of the same physical
// dimension. Anchors are kilograms for mass and liters for volume; count
// units only convert to themselves.
package unit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension partitions the supported units
type Dimension int

const (
	DimensionMass Dimension = iota
	DimensionVolume
	DimensionCount
)

func (d Dimension) String() string {
	switch d {
	case DimensionMass:
		return "mass"
	case DimensionVolume:
		return "volume"
	case DimensionCount:
		return "count"
	}
	return "unknown"
}

var (
	ErrUnknownUnit    = errors.New("unknown unit")
	ErrCrossDimension = errors.New("cannot convert between dimensions")
)

type unitDef struct {
	dimension Dimension
	// multiplicative factor to the dimension anchor (kg, l)
	factor decimal.Decimal
}

var units = map[string]unitDef{
	// mass, anchored at kg
	"kg": {DimensionMass, decimal.NewFromInt(1)},
	"g":  {DimensionMass, decimal.RequireFromString("0.001")},
	"mg": {DimensionMass, decimal.RequireFromString("0.000001")},
	"lb": {DimensionMass, decimal.RequireFromString("0.45359237")},
	"oz": {DimensionMass, decimal.RequireFromString("0.028349523125")},

	// volume, anchored at l
	"l":     {DimensionVolume, decimal.NewFromInt(1)},
	"ml":    {DimensionVolume, decimal.RequireFromString("0.001")},
	"tsp":   {DimensionVolume, decimal.RequireFromString("0.00492892159375")},
	"tbsp":  {DimensionVolume, decimal.RequireFromString("0.01478676478125")},
	"fl-oz": {DimensionVolume, decimal.RequireFromString("0.0295735295625")},
	"cup":   {DimensionVolume, decimal.RequireFromString("0.2365882365")},
	"gal":   {DimensionVolume, decimal.RequireFromString("3.785411784")},

	// count has no factor arithmetic
	"pcs": {DimensionCount, decimal.NewFromInt(1)},
}

var aliases = map[string]string{
	"kgs":          "kg",
	"kilogram":     "kg",
	"kilograms":    "kg",
	"gram":         "g",
	"grams":        "g",
	"lbs":          "lb",
	"pound":        "lb",
	"pounds":       "lb",
	"ounce":        "oz",
	"ounces":       "oz",
	"liter":        "l",
	"liters":       "l",
	"litre":        "l",
	"litres":       "l",
	"milliliter":   "ml",
	"milliliters":  "ml",
	"teaspoon":     "tsp",
	"teaspoons":    "tsp",
	"tablespoon":   "tbsp",
	"tablespoons":  "tbsp",
	"floz":         "fl-oz",
	"fluid-ounce":  "fl-oz",
	"cups":         "cup",
	"gallon":       "gal",
	"gallons":      "gal",
	"pc":           "pcs",
	"piece":        "pcs",
	"pieces":       "pcs",
	"unit":         "pcs",
	"units":        "pcs",
	"each":         "pcs",
}

// Canonical reports the canonical spelling of a unit name, or an error if the
// unit is not supported.
func Canonical(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		n = alias
	}
	if _, ok := units[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return n, nil
}

// DimensionOf returns the dimension of a unit
func DimensionOf(name string) (Dimension, error) {
	n, err := Canonical(name)
	if err != nil {
		return 0, err
	}
	return units[n].dimension, nil
}

// Convert converts value from one unit to another within a dimension.
// The same-unit case returns value untouched so the common path picks up no
// factor arithmetic.
func Convert(value decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromName, err := Canonical(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toName, err := Canonical(to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if fromName == toName {
		return value, nil
	}

	fromDef := units[fromName]
	toDef := units[toName]
	if fromDef.dimension != toDef.dimension {
		return decimal.Decimal{}, fmt.Errorf("%w: %s (%s) -> %s (%s)",
			ErrCrossDimension, fromName, fromDef.dimension, toName, toDef.dimension)
	}
	if fromDef.dimension == DimensionCount {
		// distinct count units would land here; pcs only maps to itself
		return decimal.Decimal{}, fmt.Errorf("%w: %s -> %s", ErrCrossDimension, fromName, toName)
	}

	return value.Mul(fromDef.factor).Div(toDef.factor), nil
}

// Normalize converts an authored quantity to a raw material's canonical unit
// and returns the converted quantity together with the canonical spelling of
// the target unit.
func Normalize(quantity decimal.Decimal, from, canonical string) (decimal.Decimal, string, error) {
	toName, err := Canonical(canonical)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	converted, err := Convert(quantity, from, toName)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	return converted, toName, nil
}
