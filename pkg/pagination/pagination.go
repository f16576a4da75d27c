package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any listing can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs for listing endpoints.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block returned by listing endpoints.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNextPage"`
	HasPrev    bool `json:"hasPrevPage"`
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

// Normalize clamps page to >= 1 and applies NormalizeLimit.
func Normalize(p Params) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Apply writes page and limit into q.
func (p Params) Apply(q url.Values) {
	n := Normalize(p)
	q.Set("page", strconv.Itoa(n.Page))
	q.Set("limit", strconv.Itoa(n.Limit))
}

// MetaFor derives pagination metadata when the server only reports a total.
func MetaFor(p Params, total int) Meta {
	n := Normalize(p)
	pages := 0
	if total > 0 {
		pages = (total + n.Limit - 1) / n.Limit
	}
	return Meta{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    n.Page < pages,
		HasPrev:    n.Page > 1,
	}
}
