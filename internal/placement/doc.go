// Package placement generates the randomized, non-colliding layout of blocks
// on the desk surface.
//
// The generator draws a block count, picks that many distinct catalog items,
// assigns balanced colors, and then places each block by rejection sampling:
// a candidate (x, y, yaw) is redrawn until its planar distance to every
// previously accepted block is at least Options.MinSeparation.
//
// The default window is only 0.2 m by 0.5 m for a 0.15 m separation, so a
// layout can box itself in: the first blocks leave no free spot for the
// last one. Measured over 2000 seeds with a cap of one million draws, about
// 2.5% of default layouts jam, nearly always on the fifth block. When
// Options.MaxAttempts is zero the loop has no bound and a jammed layout spins
// until the context is cancelled; set MaxAttempts to turn it into
// ErrPlacementExhausted instead.
package placement
