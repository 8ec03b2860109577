// internal/app/store/enrollment/diff.go
package enrollment

import "github.com/cyscom-vit/clubportal/internal/app/system/normalize"

// NormalizeSelection normalizes department slugs and drops duplicates
// and empties, preserving first-seen order.
func NormalizeSelection(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = normalize.DeptID(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SelectionDiff computes the departments to reserve (in target but not
// current) and to release (in current but not target). Both inputs are
// assumed normalized.
func SelectionDiff(current, target []string) (added, removed []string) {
	cur := make(map[string]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	tgt := make(map[string]struct{}, len(target))
	for _, id := range target {
		tgt[id] = struct{}{}
	}

	for _, id := range target {
		if _, ok := cur[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := tgt[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
