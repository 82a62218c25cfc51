package model

// PageSize is the fixed number of rows returned by every paginated query.
const PageSize = 20

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NormalizePage clamps page numbers below 1 to 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset returns the number of rows to skip for page.
func Offset(page int) int {
	return (NormalizePage(page) - 1) * PageSize
}

// Paginate slices an already ordered result set.
func Paginate[T any](all []T, page int) Page[T] {
	page = NormalizePage(page)
	start := min(Offset(page), len(all))
	end := min(start+PageSize, len(all))
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Page[T]{Items: items, Page: page, PageSize: PageSize}
}
