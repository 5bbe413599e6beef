package migration

import (
	"cmp"
	"fmt"
	"slices"
)

// Sort returns a new slice of migrations sorted by Version in lexicographic order.
// The sort is stable to preserve insertion order for equal versions.
func Sort(migrations []Migration) []Migration {
	sorted := slices.Clone(migrations)

	slices.SortStableFunc(sorted, func(a, b Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})

	return sorted
}

// Validate rejects a set in which two migrations share a version.
func Validate(migrations []Migration) error {
	seen := make(map[string]string, len(migrations))

	for _, m := range migrations {
		if other, ok := seen[m.Version]; ok {
			return fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateVersion, m.Version, other, m.Name)
		}

		seen[m.Version] = m.Name
	}

	return nil
}
