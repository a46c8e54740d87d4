package placement

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/palette"
)

// Vec3 is a position in the world frame, in meters.
type Vec3 struct {
	X, Y, Z float64
}

// Orientation is a roll/pitch/yaw rotation in radians.
type Orientation struct {
	Roll, Pitch, Yaw float64
}

// Placement is one generated scene object. Values are never mutated after
// the generator returns them.
type Placement struct {
	Ordinal     int
	Type        catalog.Item
	Position    Vec3
	Orientation Orientation
	Color       palette.Color
}

// Name is the entity name used for files, namespaces and spawning.
func (p Placement) Name() string {
	return fmt.Sprintf("block%d", p.Ordinal)
}

// PlanarDistance is the distance between two placements ignoring height.
func PlanarDistance(a, b Placement) float64 {
	return math.Hypot(a.Position.X-b.Position.X, a.Position.Y-b.Position.Y)
}

// Pose is the string-encoded pose handed to the spawner.
type Pose struct {
	X, Y, Z          string
	Roll, Pitch, Yaw string
}

// Pose encodes the placement's position and orientation as decimal strings.
func (p Placement) Pose() Pose {
	return Pose{
		X:     FormatFloat(p.Position.X),
		Y:     FormatFloat(p.Position.Y),
		Z:     FormatFloat(p.Position.Z),
		Roll:  FormatFloat(p.Orientation.Roll),
		Pitch: FormatFloat(p.Orientation.Pitch),
		Yaw:   FormatFloat(p.Orientation.Yaw),
	}
}

// FormatFloat renders f with the shortest representation that round-trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
