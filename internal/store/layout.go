package store

import (
	"fmt"
	"sort"
	"strings"
)

// layoutViolations applies the placement rules to the observed collection
// names per database: PDC_* collections belong only in crucible, locations
// only in registry, processedclaims and jobs only in activity. A clean layout
// returns nil.
func layoutViolations(perDB map[string][]string) error {
	var violations []string

	for db, names := range perDB {
		for _, name := range names {
			switch {
			case strings.HasPrefix(name, "PDC_") && db != DBCrucible:
				violations = append(violations,
					fmt.Sprintf("%s.%s: PDC_ collections belong in %s", db, name, DBCrucible))
			case name == CollLocations && db != DBRegistry:
				violations = append(violations,
					fmt.Sprintf("%s.%s: %s belongs in %s", db, name, CollLocations, DBRegistry))
			case (name == CollProcessedClaims || name == CollJobs) && db != DBActivity:
				violations = append(violations,
					fmt.Sprintf("%s.%s: %s belongs in %s", db, name, name, DBActivity))
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	sort.Strings(violations)
	return fmt.Errorf("database layout violations: %s", strings.Join(violations, "; "))
}
