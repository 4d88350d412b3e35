package core

const (
	// DefaultPageSize is applied when a request carries no page size.
	DefaultPageSize = 20
	// MaxPageSize caps the page size a client may request.
	MaxPageSize = 100
)

// PageRequest selects one page of a result set. Number is zero-based.
type PageRequest struct {
	Number int
	Size   int
}

// Normalized returns a copy with the number floored at zero and the size
// clamped to [1, MaxPageSize], defaulting to DefaultPageSize when unset.
func (p PageRequest) Normalized() PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}

	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}

	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}

	return p
}

// Offset returns the number of records preceding this page.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one slice of a larger result set together with the total count.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// TotalPages derives the page count from the total element count.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}

	pages := p.TotalElements / int64(p.Size)
	if p.TotalElements%int64(p.Size) != 0 {
		pages++
	}

	return int(pages)
}
