// Package palette defines block colors and the balanced color assignment
// used when a scene is generated.
package palette

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Color is a named RGBA color. RGBA is kept in the space separated form the
// model template expects, e.g. "1.0 0.5 0.0 1".
type Color struct {
	Name string
	RGBA string
}

// Default is the four-color palette of the desk scene, in fixed order.
var Default = []Color{
	{Name: "yellow", RGBA: "1.0 1.0 0.0 1"},
	{Name: "green", RGBA: "0.0 1.0 0.0 1"},
	{Name: "red", RGBA: "1.0 0.0 0.0 1"},
	{Name: "orange", RGBA: "1.0 0.5 0.0 1"},
}

// Validate checks that a palette is usable for balancing.
func Validate(colors []Color) error {
	if len(colors) == 0 {
		return fmt.Errorf("palette must contain at least one color")
	}
	seen := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		if c.Name == "" || c.RGBA == "" {
			return fmt.Errorf("palette color requires both a name and an rgba value (got %+v)", c)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate palette color %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// Balance returns n colors drawn from colors so that every color appears
// n/len(colors) times and the n%len(colors) leftover slots hold distinct
// colors sampled without replacement. The result is shuffled.
func Balance(rng *rand.Rand, n int, colors []Color) []Color {
	if n <= 0 {
		return nil
	}
	base := n / len(colors)
	rem := n % len(colors)

	out := make([]Color, 0, n)
	for range base {
		out = append(out, colors...)
	}
	for _, i := range rng.Perm(len(colors))[:rem] {
		out = append(out, colors[i])
	}

	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Names returns the color names in order.
func Names(colors []Color) []string {
	names := make([]string, 0, len(colors))
	for _, c := range colors {
		names = append(names, c.Name)
	}
	return slices.Clip(names)
}
