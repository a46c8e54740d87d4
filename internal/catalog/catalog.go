// Package catalog holds the static reference data describing which physical
// block shapes can appear in a scene.
package catalog

import (
	"fmt"
	"slices"
)

// Item identifies one known block shape. The value doubles as the
// block_type parameter handed to the model template.
type Item string

// DefaultBlocks is the set of block shapes shipped with the desk scene.
var DefaultBlocks = []Item{
	"X1-Y1-Z2",
	"X1-Y2-Z2",
	"X1-Y4-Z2",
	"X1-Y2-Z1",
	"X1-Y3-Z2-FILLET",
	"X1-Y2-Z2-CHAMFER",
	"X1-Y3-Z2",
	"X1-Y2-Z2-TWINFILLET",
	"X1-Y4-Z1",
}

// Catalog is an immutable, ordered list of distinct items.
type Catalog struct {
	items []Item
}

// New builds a catalog from the given items. Empty names and duplicates are
// rejected because sampling without replacement relies on distinct entries.
func New(items ...Item) (*Catalog, error) {
	seen := make(map[Item]struct{}, len(items))
	for _, it := range items {
		if it == "" {
			return nil, fmt.Errorf("catalog item name must not be empty")
		}
		if _, dup := seen[it]; dup {
			return nil, fmt.Errorf("duplicate catalog item %q", it)
		}
		seen[it] = struct{}{}
	}
	return &Catalog{items: slices.Clone(items)}, nil
}

// Default returns the catalog of DefaultBlocks.
func Default() *Catalog {
	c, err := New(DefaultBlocks...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len reports the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// At returns the i-th item.
func (c *Catalog) At(i int) Item { return c.items[i] }

// Items returns a copy of the catalog contents.
func (c *Catalog) Items() []Item { return slices.Clone(c.items) }
