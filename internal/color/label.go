// Package color provides deterministic color generation for labels.
package color

import (
	"math"
	"strconv"
)

// goldenAngle spreads consecutively generated hues as far apart as
// possible without storing previously assigned colors.
const goldenAngle = 137.508

const (
	saturation = 65
	lightness  = 55
)

// ForIndex generates the color for the nth auto-assigned label.
// The hue walks the color wheel by the golden angle; saturation and
// lightness are fixed for readability. Deterministic: the same index
// always yields the same color. Collisions with manually chosen colors
// are possible, only the auto-assigned sequence is spread.
func ForIndex(index int) string {
	hue := math.Mod(float64(index)*goldenAngle, 360)
	return "hsl(" + strconv.FormatFloat(hue, 'f', -1, 64) +
		", " + strconv.Itoa(saturation) + "%, " + strconv.Itoa(lightness) + "%)"
}
