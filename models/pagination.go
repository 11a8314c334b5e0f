package models

// DefaultPageSize is used when a list request names no page size
const DefaultPageSize = 50

// MaxPageSize caps the page size a client may ask for
const MaxPageSize = 200

// Pagination describes one page of a filtered email list
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	Total      int  `json:"total"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate computes page number page of total items. Out of range values
// are clamped. start and end bound the page in the full list.
func Paginate(total, page, pageSize int) (p Pagination, start, end int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start = (page - 1) * pageSize
	end = start + pageSize
	if end > total {
		end = total
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, start, end
}
