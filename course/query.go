package course

// Query is one page request against the store.
type Query struct {
	Filters FilterSet
	Sort    Sort
	Limit   int
	After   string
}

// NewQuery builds the first-page query for f using its sort key.
func NewQuery(f FilterSet, limit int) Query {
	return Query{Filters: f, Sort: f.SortKey().Sort(), Limit: limit}
}
