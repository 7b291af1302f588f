package stitchgo

import "sort"

// sortedMetadataKeys returns m's keys in sorted order, so callers that need
// a deterministic traversal (Checksum) don't have to re-derive it.
func sortedMetadataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
