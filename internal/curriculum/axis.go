package curriculum

import "strings"

// Axis is a PAES M1 subject strand.
type Axis string

const (
	AxisAlgebra     Axis = "ALG"
	AxisNumbers     Axis = "NUM"
	AxisGeometry    Axis = "GEO"
	AxisProbability Axis = "PROB"
)

var axisNames = map[Axis]string{
	AxisAlgebra:     "Álgebra y Funciones",
	AxisNumbers:     "Números",
	AxisGeometry:    "Geometría",
	AxisProbability: "Probabilidad y Estadística",
}

// Content data names axes with long snake_case keys.
var axisKeys = map[string]Axis{
	"algebra_y_funciones":        AxisAlgebra,
	"numeros":                    AxisNumbers,
	"geometria":                  AxisGeometry,
	"probabilidad_y_estadistica": AxisProbability,
}

// AllAxes returns the axes in display order.
func AllAxes() []Axis {
	return []Axis{AxisAlgebra, AxisNumbers, AxisGeometry, AxisProbability}
}

// ParseAxis accepts either a short code ("ALG") or a content key
// ("algebra_y_funciones"). Unknown values are returned as-is so that
// callers can still group by them.
func ParseAxis(s string) Axis {
	if a, ok := axisKeys[strings.ToLower(s)]; ok {
		return a
	}
	up := Axis(strings.ToUpper(s))
	if _, ok := axisNames[up]; ok {
		return up
	}
	return Axis(s)
}

// Known reports whether a is one of the four PAES M1 axes.
func (a Axis) Known() bool {
	_, ok := axisNames[a]
	return ok
}

// DisplayName returns the Spanish axis name, or the raw value if unknown.
func (a Axis) DisplayName() string {
	if n, ok := axisNames[a]; ok {
		return n
	}
	return string(a)
}
