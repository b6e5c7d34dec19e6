package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps page*size inside int32 for every allowed size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate turns a zero-based page and a size into offset/limit.
// Negative pages fall back to 0, pages past MaxPage are clamped to it and
// an out-of-range size falls back to DefaultPageSize.
func Calculate(page, size int) (p, offset, limit int) {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, page * size, size
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	offset := int64(page) * int64(size)
	return Page[T]{
		Data: items,
		Meta: Meta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: (total + int64(size) - 1) / int64(size),
			HasPrev:    page > 0,
			HasNext:    offset+int64(size) < total,
		},
	}
}
