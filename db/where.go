package db

import (
	"fmt"
	"strings"
)

// Conjunction assembles a flat WHERE clause of AND-ed predicates together
// with the values they bind. A predicate's placeholder is the length of the
// argument list right after its value was appended, so numbering only ever
// grows and earlier positions are never reused.
//
// Column names are written into the SQL text and must come from code.
type Conjunction struct {
	dialect Dialect
	preds   []string
	args    []any
}

// NewConjunction returns an empty conjunction for dialect d.
func NewConjunction(d Dialect) *Conjunction {
	return &Conjunction{dialect: d}
}

func (c *Conjunction) bind(column, op string, value any) {
	c.args = append(c.args, value)
	c.preds = append(c.preds, fmt.Sprintf("%s %s $%d", column, op, len(c.args)))
}

// AtLeast adds `column >= value`.
func (c *Conjunction) AtLeast(column string, value any) *Conjunction {
	c.bind(column, ">=", value)
	return c
}

// AtMost adds `column <= value`.
func (c *Conjunction) AtMost(column string, value any) *Conjunction {
	c.bind(column, "<=", value)
	return c
}

// Equals adds `column = value`.
func (c *Conjunction) Equals(column string, value any) *Conjunction {
	c.bind(column, "=", value)
	return c
}

// Contains adds a case-insensitive substring match on column.
func (c *Conjunction) Contains(column, substr string) *Conjunction {
	c.bind(column, c.dialect.ILike(), "%"+substr+"%")
	return c
}

// Raw adds a predicate that binds no value, e.g. `equity > 0`.
func (c *Conjunction) Raw(pred string) *Conjunction {
	c.preds = append(c.preds, pred)
	return c
}

// Len returns the number of predicates added so far.
func (c *Conjunction) Len() int { return len(c.preds) }

// Where returns " WHERE p1 AND p2 ..." or "" when no predicate was added.
func (c *Conjunction) Where() string {
	if len(c.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.preds, " AND ")
}

// Args returns the bound values in placeholder order.
func (c *Conjunction) Args() []any { return c.args }
