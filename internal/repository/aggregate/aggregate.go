// Package aggregate factors the read-side "filter rows, then count or sum a
// column" pattern shared by the procurement, inventory, and equipment
// repositories into one place.
package aggregate

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Filter narrows a select query before aggregation.
type Filter func(*bun.SelectQuery) *bun.SelectQuery

// SumDecimal sums a numeric column over the rows of model matched by the
// filters. An empty result set sums to zero.
func SumDecimal(ctx context.Context, db bun.IDB, model any, column string, filters ...Filter) (decimal.Decimal, error) {
	q := db.NewSelect().Model(model).ColumnExpr("COALESCE(SUM(?), 0)", bun.Ident(column))
	for _, f := range filters {
		q = f(q)
	}

	var total decimal.Decimal
	if err := q.Scan(ctx, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return total, nil
}

// Count counts the rows of model matched by the filters.
func Count(ctx context.Context, db bun.IDB, model any, filters ...Filter) (int, error) {
	q := db.NewSelect().Model(model)
	for _, f := range filters {
		q = f(q)
	}
	return q.Count(ctx)
}

// Where builds a filter from a plain query fragment.
func Where(query string, args ...any) Filter {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	}
}
