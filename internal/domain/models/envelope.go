package models

import "time"

// Envelope is the uniform wrapper of every backend response.
type Envelope[T any] struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// Page is the paginated payload returned by list endpoints.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

// ListQuery carries the list screen parameters. Page is zero-based.
type ListQuery struct {
	Page   int    `form:"page" json:"page"`
	Size   int    `form:"size" json:"size"`
	Search string `form:"search" json:"search"`
}
