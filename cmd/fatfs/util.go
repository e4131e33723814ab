package main

import (
	"sort"

	"fatfs/pkg/manifest"
)

func sortedPaths(m *manifest.Manifest) []string {
	paths := make([]string, 0, len(m.Entries))
	for p := range m.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
