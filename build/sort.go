package build

import (
	"facette.io/natsort"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	natsort.Sort(keys)

	return keys
}
