package plan

import (
	"sort"
	"strings"
)

// Ros2 is the command used to start node, include and spawn actions.
const Ros2 = "ros2"

// CommandLine returns the argv that starts the action, without the leading
// ros2 binary path. description is the expanded robot description for
// actions that declare one and is ignored otherwise. Env actions have no
// command line.
func CommandLine(a *Action, description string) []string {
	switch a.Kind {
	case KindNode:
		argv := append([]string{"run", a.Package, a.Executable}, a.Arguments...)
		var ros []string
		if a.NodeName != "" {
			ros = append(ros, "-r", "__node:="+a.NodeName)
		}
		if a.Namespace != "" {
			ros = append(ros, "-r", "__ns:="+absoluteNamespace(a.Namespace))
		}
		for _, k := range sortedKeys(a.Parameters) {
			ros = append(ros, "-p", k+":="+a.Parameters[k])
		}
		if a.Description != nil {
			ros = append(ros, "-p", a.Description.Parameter+":="+description)
		}
		if len(ros) > 0 {
			argv = append(append(argv, "--ros-args"), ros...)
		}
		return argv

	case KindInclude:
		argv := []string{"launch", a.Package, a.LaunchFile}
		for _, k := range sortedKeys(a.LaunchArguments) {
			argv = append(argv, k+":="+a.LaunchArguments[k])
		}
		return argv

	case KindSpawn:
		argv := []string{"run", "ros_gz_sim", "create", "-name", a.Entity}
		if a.Description != nil {
			argv = append(argv, "-string", description)
		} else {
			argv = append(argv, "-file", a.File)
		}
		if a.Pose != nil {
			argv = append(argv,
				"-x", a.Pose.X,
				"-y", a.Pose.Y,
				"-z", a.Pose.Z,
				"-R", a.Pose.Roll,
				"-P", a.Pose.Pitch,
				"-Y", a.Pose.Yaw,
			)
		}
		return argv
	}
	return nil
}

func absoluteNamespace(ns string) string {
	if strings.HasPrefix(ns, "/") {
		return ns
	}
	return "/" + ns
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
