package core

import "strings"

// Ordering is a sort instruction on a named field.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	if ord.Ascending {
		return ord.Field
	}
	return "-" + ord.Field
}

// ParseOrderings parses a comma separated list of fields; a leading "-" means descending.
// eg: "-total,name"
func ParseOrderings(val string) []Ordering {
	var orderings []Ordering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = strings.TrimSpace(field[1:]) // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, Ordering{Field: field, Ascending: !descending})
	}
	return orderings
}
