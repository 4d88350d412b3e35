package core

// Book is a catalog entry. The ID is assigned by the store on insert and
// the Isbn is immutable after creation; updates touch title and author only.
type Book struct {
	ID     int64
	Title  string
	Author string
	Isbn   string
}

// BookFilter is a filter-by-example for book searches. Empty fields are
// wildcards; non-empty fields constrain the match with AND semantics.
type BookFilter struct {
	Title  string
	Author string
}

// IsEmpty reports whether the filter constrains nothing.
func (f BookFilter) IsEmpty() bool {
	return f.Title == "" && f.Author == ""
}
