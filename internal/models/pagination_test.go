package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int64
		want     Pagination
	}{
		{
			name: "first of several pages", page: 1, pageSize: 10, total: 25,
			want: Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 25, HasNext: true, HasPrev: false},
		},
		{
			name: "middle page", page: 2, pageSize: 10, total: 25,
			want: Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 25, HasNext: true, HasPrev: true},
		},
		{
			name: "last page", page: 3, pageSize: 10, total: 25,
			want: Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 25, HasNext: false, HasPrev: true},
		},
		{
			name: "empty listing", page: 1, pageSize: 10, total: 0,
			want: Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, HasNext: false, HasPrev: false},
		},
		{
			name: "exact page boundary", page: 1, pageSize: 10, total: 10,
			want: Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 10, HasNext: false, HasPrev: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.pageSize, tt.total))
		})
	}
}
