package shared

// Filter describes common listing parameters. SortBy names a column
// the repository has whitelisted; anything else falls back to the
// repository's default ordering.
type Filter struct {
	Limit  int
	Offset int
	SortBy string
	Desc   bool
}

// Paginated wraps a page of results with the total count
type Paginated[T any] struct {
	Items []T
	Total int64
}
