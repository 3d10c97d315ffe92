package domain

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// maxOffset bounds (Page-1)*Limit so the offset never overflows.
	maxOffset = math.MaxInt32
)

// PageRequest is a validated 1-based page request.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest parses raw page and limit query values. Missing,
// non-numeric or non-positive values fall back to the defaults. Pages past
// the largest addressable offset are clamped; they are empty either way.
func NewPageRequest(page, limit string) PageRequest {
	p := parsePositive(page, DefaultPage)
	l := parsePositive(limit, DefaultLimit)
	if l > MaxLimit {
		l = MaxLimit
	}
	if maxPage := maxOffset / l; p > maxPage {
		p = maxPage
	}
	return PageRequest{Page: p, Limit: l}
}

// Offset returns the number of rows to skip.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	Limit       int
	HasMore     bool
}

// NewPagination computes pagination metadata for a request and total count.
func NewPagination(req PageRequest, total int) Pagination {
	pages := 0
	if req.Limit > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return Pagination{
		CurrentPage: req.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       req.Limit,
		HasMore:     req.Page < pages,
	}
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
