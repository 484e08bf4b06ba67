package sqlxrepos

import (
	"strings"

	"github.com/trezcool/malezi/core"
)

// orderBy renders an ORDER BY clause from the requested ordering, falling
// back to the given default. The ordering comes straight off the query
// string; fields outside the repository's sortable set are dropped so they
// never reach the SQL text.
func orderBy(ordering []core.DBOrdering, sortable map[string]bool, dflt string) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if sortable[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	if len(terms) == 0 {
		if dflt == "" {
			return ""
		}
		return " ORDER BY " + dflt
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func sortableFields(fields ...string) map[string]bool {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}
