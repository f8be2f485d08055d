package shared

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is an offset based window over a result set
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds, using def when no limit was given
func (p Page) Normalize(def int) Page {
	if def <= 0 {
		def = DefaultPageLimit
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page Page) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:  items,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
