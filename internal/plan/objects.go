package plan

import (
	"github.com/vk/blockscene/internal/modelpipe"
	"github.com/vk/blockscene/internal/placement"
)

// Object pairs a placement with the model files materialized for it. A
// Descriptor only exists once the pipeline has written both files, so
// holding one is what allows the block to be spawned.
type Object struct {
	Placement  placement.Placement
	Descriptor *modelpipe.Descriptor
}

// ObjectActions returns the state publisher and spawn actions of a block.
func ObjectActions(obj Object) []*Action {
	name := obj.Placement.Name()
	pose := obj.Placement.Pose()

	publisher := &Action{
		ID:         name + "_state_publisher",
		Kind:       KindNode,
		Package:    "robot_state_publisher",
		Executable: "robot_state_publisher",
		NodeName:   "robot_state_publisher",
		Namespace:  name,
		Parameters: map[string]string{"robot_description": obj.Descriptor.Intermediate},
	}
	spawn := &Action{
		ID:     "spawn_" + name,
		Kind:   KindSpawn,
		Entity: name,
		File:   obj.Descriptor.FinalPath,
		Pose:   &pose,
	}
	return []*Action{publisher, spawn}
}
