package weight

import (
	"fmt"
	"strings"
)

// Unit is a mass unit accepted by the shop configuration.
type Unit string

const (
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Pound    Unit = "lb"
	Ounce    Unit = "oz"
	Tonne    Unit = "tonne"
)

var gramsPerUnit = map[Unit]float64{
	Gram:     1,
	Kilogram: 1000,
	Pound:    453.59237,
	Ounce:    28.349523125,
	Tonne:    1000000,
}

// ParseUnit normalizes a configured unit name.
func ParseUnit(raw string) (Unit, error) {
	unit := Unit(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := gramsPerUnit[unit]; !ok {
		return "", fmt.Errorf("unknown weight unit %q", raw)
	}
	return unit, nil
}

// Weight is a value paired with its unit.
type Weight struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func New(value float64, unit Unit) Weight {
	return Weight{Value: value, Unit: unit}
}

// Convert returns w expressed in the target unit. Converting to the
// weight's own unit returns it unchanged.
func Convert(w Weight, to Unit) Weight {
	if w.Unit == to {
		return w
	}
	from, ok := gramsPerUnit[w.Unit]
	if !ok {
		return w
	}
	target, ok := gramsPerUnit[to]
	if !ok {
		return w
	}
	return Weight{Value: w.Value * from / target, Unit: to}
}
