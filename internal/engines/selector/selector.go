// Package selector maps the categories chosen by the caller onto decision
// variables.
package selector

import (
	"github.com/paliers/budget-allocator/pkg/core"
)

// SelectCategories returns the variable map of the chosen categories found
// in table. Names are matched after core.NormalizeName. Ids are assigned in
// table order, starting at X1; chosen names absent from the table are
// dropped and duplicates yield a single entry.
func SelectCategories(table *core.PriceTable, chosen []string) core.VariableMap {
	vars := make(core.VariableMap)
	if table == nil || len(chosen) == 0 {
		return vars
	}

	wanted := make(map[string]struct{}, len(chosen))
	for _, name := range chosen {
		wanted[core.NormalizeName(name)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(wanted))
	for _, row := range table.Categories {
		name := core.NormalizeName(row.Name)
		if _, ok := wanted[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		vars[core.VariableID(len(seen))] = name
	}
	return vars
}

// Unmatched returns the normalized chosen names that have no row in table,
// in the order they were given.
func Unmatched(table *core.PriceTable, chosen []string) []string {
	known := make(map[string]struct{})
	if table != nil {
		for _, row := range table.Categories {
			known[core.NormalizeName(row.Name)] = struct{}{}
		}
	}

	var out []string
	reported := make(map[string]struct{})
	for _, name := range chosen {
		n := core.NormalizeName(name)
		if _, ok := known[n]; ok {
			continue
		}
		if _, ok := reported[n]; ok {
			continue
		}
		reported[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
