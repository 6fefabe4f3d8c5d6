// Package labels maps merge request labels to backport target branches.
package labels

import "strings"

// DefaultPrefix is the label prefix that marks a backport target.
const DefaultPrefix = "backport-"

// ParseTargets returns the branch names encoded in labels that start with
// prefix, in label order. Only the prefix is stripped, the remainder is kept
// verbatim. Labels that are exactly the prefix are ignored and repeated
// branches keep their first position.
// A label set without any match yields an empty, non-nil slice.
func ParseTargets(labelNames []string, prefix string) []string {
	targets := make([]string, 0, len(labelNames))
	if prefix == "" {
		return targets
	}

	seen := make(map[string]struct{}, len(labelNames))
	for _, name := range labelNames {
		branch, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}

		if branch == "" {
			continue
		}

		if _, dup := seen[branch]; dup {
			continue
		}
		seen[branch] = struct{}{}
		targets = append(targets, branch)
	}

	return targets
}

// Contains reports whether label is present in labelNames.
func Contains(labelNames []string, label string) bool {
	for _, name := range labelNames {
		if name == label {
			return true
		}
	}
	return false
}

// Union returns existing followed by every element of add that is not
// already present. The input slice is never modified.
func Union(existing []string, add ...string) []string {
	result := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]struct{}, len(existing)+len(add))

	for _, group := range [][]string{existing, add} {
		for _, label := range group {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			result = append(result, label)
		}
	}

	return result
}
