package placement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/palette"
)

// ErrPlacementExhausted is returned when Options.MaxAttempts is set and a
// block could not be placed within that many draws.
var ErrPlacementExhausted = errors.New("placement attempts exhausted")

// Options controls layout generation. Jitter values are half-widths: x is
// drawn from [AnchorX-JitterX, AnchorX+JitterX].
type Options struct {
	MinCount int
	MaxCount int

	AnchorX float64
	AnchorY float64
	JitterX float64
	JitterY float64

	SurfaceZ      float64
	MinSeparation float64

	// MaxAttempts caps the rejection loop per block. Zero means unbounded.
	MaxAttempts int
}

// DefaultOptions returns the desk layout: 4 or 5 blocks around (0.1, 0.45)
// at table height, at least 15cm apart.
func DefaultOptions() Options {
	return Options{
		MinCount:      4,
		MaxCount:      5,
		AnchorX:       0.1,
		AnchorY:       0.45,
		JitterX:       0.1,
		JitterY:       0.25,
		SurfaceZ:      0.88,
		MinSeparation: 0.15,
	}
}

// Generator produces placements from a catalog, a palette and a random
// source. It is not safe for concurrent use because the random source is not.
type Generator struct {
	opts    Options
	catalog *catalog.Catalog
	colors  []palette.Color
	rng     *rand.Rand
}

// NewGenerator validates the options against the catalog and palette.
func NewGenerator(opts Options, cat *catalog.Catalog, colors []palette.Color, rng *rand.Rand) (*Generator, error) {
	if rng == nil {
		return nil, fmt.Errorf("a random source is required")
	}
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("catalog must not be empty")
	}
	if err := palette.Validate(colors); err != nil {
		return nil, err
	}
	if opts.MinCount < 1 || opts.MaxCount < opts.MinCount {
		return nil, fmt.Errorf("invalid block count range [%d, %d]", opts.MinCount, opts.MaxCount)
	}
	if opts.MaxCount > cat.Len() {
		return nil, fmt.Errorf("max count %d exceeds catalog size %d", opts.MaxCount, cat.Len())
	}
	if opts.JitterX < 0 || opts.JitterY < 0 {
		return nil, fmt.Errorf("jitter must not be negative (got %g, %g)", opts.JitterX, opts.JitterY)
	}
	if opts.MinSeparation < 0 {
		return nil, fmt.Errorf("minimum separation must not be negative (got %g)", opts.MinSeparation)
	}
	if opts.MaxAttempts < 0 {
		return nil, fmt.Errorf("max attempts must not be negative (got %d)", opts.MaxAttempts)
	}
	return &Generator{opts: opts, catalog: cat, colors: colors, rng: rng}, nil
}

// Generate draws a block count in [MinCount, MaxCount] and lays out that
// many blocks.
func (g *Generator) Generate(ctx context.Context) ([]Placement, error) {
	k := g.opts.MinCount + g.rng.IntN(g.opts.MaxCount-g.opts.MinCount+1)
	return g.GenerateN(ctx, k)
}

// GenerateN lays out exactly k blocks with distinct types and balanced
// colors.
func (g *Generator) GenerateN(ctx context.Context, k int) ([]Placement, error) {
	logger := ctxlog.FromContext(ctx)
	if k < 0 || k > g.catalog.Len() {
		return nil, fmt.Errorf("cannot place %d distinct blocks from a catalog of %d", k, g.catalog.Len())
	}

	types := make([]catalog.Item, 0, k)
	for _, i := range g.rng.Perm(g.catalog.Len())[:k] {
		types = append(types, g.catalog.At(i))
	}
	colors := palette.Balance(g.rng, k, g.colors)
	logger.Debug("Selected block types and colors.", "count", k, "types", types, "colors", palette.Names(colors))

	accepted := make([]Placement, 0, k)
	for i := range k {
		p, attempts, err := g.place(ctx, i+1, types[i], colors[i], accepted)
		if err != nil {
			return nil, err
		}
		logger.Debug("Placed block.", "name", p.Name(), "type", p.Type, "attempts", attempts,
			"x", p.Position.X, "y", p.Position.Y, "yaw", p.Orientation.Yaw)
		accepted = append(accepted, p)
	}
	return accepted, nil
}

// place runs the rejection loop for one block. It stops early when ctx is
// done, which is the only way out of an unbounded loop that cannot succeed.
func (g *Generator) place(ctx context.Context, ordinal int, item catalog.Item, color palette.Color, accepted []Placement) (Placement, int, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Placement{}, attempt, fmt.Errorf("block%d (%s) interrupted after %d attempts: %w", ordinal, item, attempt-1, err)
		}
		candidate := Placement{
			Ordinal: ordinal,
			Type:    item,
			Position: Vec3{
				X: g.opts.AnchorX + g.uniform(-g.opts.JitterX, g.opts.JitterX),
				Y: g.opts.AnchorY + g.uniform(-g.opts.JitterY, g.opts.JitterY),
				Z: g.opts.SurfaceZ,
			},
			// Yaw only, so blocks stay on their base.
			Orientation: Orientation{Yaw: g.rng.Float64() * 2 * math.Pi},
			Color:       color,
		}
		if !collides(candidate, accepted, g.opts.MinSeparation) {
			return candidate, attempt, nil
		}
		if g.opts.MaxAttempts > 0 && attempt >= g.opts.MaxAttempts {
			return Placement{}, attempt, fmt.Errorf("block%d (%s) after %d attempts: %w", ordinal, item, attempt, ErrPlacementExhausted)
		}
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

func collides(candidate Placement, accepted []Placement, minDistance float64) bool {
	for _, p := range accepted {
		if PlanarDistance(candidate, p) < minDistance {
			return true
		}
	}
	return false
}
