package db

import (
	"fmt"
	"strings"
)

// Assignment is one field of a partial update.
type Assignment struct {
	Field string
	Value any
}

// Assignments is an ordered partial update. Order decides placeholder
// numbering, so it is a slice rather than a map.
type Assignments []Assignment

// Set appends field=value and returns the extended slice.
func (a Assignments) Set(field string, value any) Assignments {
	return append(a, Assignment{Field: field, Value: value})
}

// PartialUpdate builds the SET fragment of an UPDATE statement.
//
// Each assignment becomes `"column"=$N`, where column is aliases[field] when
// present and field otherwise, and N is the assignment's 1-based position.
// values[N-1] is the value bound to $N. The caller continues numbering at
// len(values)+1, typically for the WHERE key:
//
//	set, values, err := db.PartialUpdate(
//	    db.Assignments{}.Set("firstName", "Aliya").Set("age", 32),
//	    map[string]string{"firstName": "first_name"})
//	// set    == `"first_name"=$1, "age"=$2`
//	// values == []any{"Aliya", 32}
//
// Field names and aliases are written into the SQL text. They must come from
// code, never from request input; values are always bound.
func PartialUpdate(data Assignments, aliases map[string]string) (setClause string, values []any, err error) {
	if len(data) == 0 {
		return "", nil, Invalidf("no data")
	}

	cols := make([]string, len(data))
	values = make([]any, len(data))
	for i, a := range data {
		col, ok := aliases[a.Field]
		if !ok {
			col = a.Field
		}
		cols[i] = fmt.Sprintf(`"%s"=$%d`, col, i+1)
		values[i] = a.Value
	}
	return strings.Join(cols, ", "), values, nil
}
