package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs from controllers.
type Params struct {
	Page  int
	Limit int
}

// Page describes one page of results.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps the requested page to 1 or greater.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Offset converts normalized page/limit values into a row offset.
func Offset(page, limit int) int {
	return (NormalizePage(page) - 1) * NormalizeLimit(limit)
}

// NewPage builds page metadata from the request params and the total count.
func NewPage(page, limit int, total int64) Page {
	normalizedLimit := NormalizeLimit(limit)
	totalPages := int((total + int64(normalizedLimit) - 1) / int64(normalizedLimit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Page{
		Page:       NormalizePage(page),
		Limit:      normalizedLimit,
		Total:      total,
		TotalPages: totalPages,
	}
}
