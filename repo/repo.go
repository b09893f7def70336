// Package repo holds the entity data-access modules. Every repository takes
// a db.Querier, so the same code runs against a pooled *db.DB or inside a
// *db.Tx. All SQL is spelled out here; partial updates go through
// db.PartialUpdate and listings through db.Conjunction.
package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
)

// deleteOne runs a single-key DELETE and reports ErrNotFound when no row was
// removed.
func deleteOne(ctx context.Context, q db.Querier, query string, key any, entity string) error {
	res, err := q.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("repo/%s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/%s: %w", entity, err)
	}
	if n == 0 {
		return db.NotFoundf("no %s: %v", entity, key)
	}
	return nil
}
