package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name              string
		total, page, size int
		want              Pagination
		start, end        int
	}{
		{"empty list", 0, 1, 10, Pagination{Page: 1, PageSize: 10, TotalPages: 1}, 0, 0},
		{"first page", 25, 1, 10, Pagination{Page: 1, PageSize: 10, TotalPages: 3, Total: 25, HasNext: true}, 0, 10},
		{"last partial page", 25, 3, 10, Pagination{Page: 3, PageSize: 10, TotalPages: 3, Total: 25, HasPrev: true}, 20, 25},
		{"page past the end", 25, 9, 10, Pagination{Page: 3, PageSize: 10, TotalPages: 3, Total: 25, HasPrev: true}, 20, 25},
		{"page zero", 5, 0, 10, Pagination{Page: 1, PageSize: 10, TotalPages: 1, Total: 5}, 0, 5},
		{"default size", 7, 1, 0, Pagination{Page: 1, PageSize: DefaultPageSize, TotalPages: 1, Total: 7}, 0, 7},
		{"size capped", 500, 1, 1000, Pagination{Page: 1, PageSize: MaxPageSize, TotalPages: 3, Total: 500, HasNext: true}, 0, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, start, end := Paginate(tt.total, tt.page, tt.size)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
