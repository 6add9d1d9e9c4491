// Package paging provides keyset pagination helpers.
//
// A page is fetched with one extra row to detect whether another page
// exists; the cursor for the next page encodes the sort value and the
// identifier of the last row actually returned:
//
//	res, err := paging.Paginate(ctx, paging.Params{Cursor: after, Limit: 24},
//	    func(ctx context.Context, c *paging.Cursor, limit int) ([]Course, error) {
//	        return repo.find(ctx, c, limit)
//	    },
//	    func(c Course) paging.Cursor { return paging.Cursor{Value: c.Name, ID: c.ID} },
//	)
//
// Cursors are opaque to callers and only valid for the filter and sort
// order they were produced under.
package paging
