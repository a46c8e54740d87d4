package modelpipe

import (
	"strings"
	"unicode/utf8"
)

// PosePublisherPlugin enables pose telemetry for the model and its nested
// models at 100 Hz.
const PosePublisherPlugin = `
            <plugin
                filename="ignition-gazebo-pose-publisher-system"
                name="ignition::gazebo::systems::PosePublisher">
                <publish_model_pose>true</publish_model_pose>
                <publish_nested_model_pose>true</publish_nested_model_pose>
                <use_pose_vector_msg>true</use_pose_vector_msg>
                <update_frequency>100.0</update_frequency>
            </plugin>
            `

// ModelClosingTag is the line marker the plugin is inserted in front of.
const ModelClosingTag = "</model>"

// SplitLines splits text on line boundaries: "\n", "\r", "\r\n" and the
// other Unicode line and record separators. A trailing line break does not
// produce an empty final line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// InjectBefore returns a copy of lines with fragment inserted directly before
// the first line containing tag. Without such a line the fragment goes in
// front of the last line, or becomes the only line of an empty input.
//
// Injection is not idempotent: applying it twice inserts the fragment twice.
func InjectBefore(lines []string, tag, fragment string) []string {
	at := len(lines) - 1
	for i, line := range lines {
		if strings.Contains(line, tag) {
			at = i
			break
		}
	}
	if at < 0 {
		at = 0
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, fragment)
	out = append(out, lines[at:]...)
	return out
}
