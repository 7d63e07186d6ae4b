package main

import "slices"

// scriptBanner opens every rendered migration script.
var scriptBanner = []string{
	"-- Migration script generated by beam.",
	"-- One statement per line; review before applying.",
}

// renderScript turns ordered migration steps into script lines: the banner,
// then per step a label comment followed by one semicolon-terminated line per
// command. Purely textual.
func renderScript(steps []MigrationStep) []string {
	lines := slices.Clone(scriptBanner)
	for _, step := range steps {
		lines = append(lines, "-- "+step.Label)
		for _, cmd := range step.Commands {
			lines = append(lines, cmd+";")
		}
	}
	return lines
}
