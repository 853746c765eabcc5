// Package pagination normalizes page/limit query parameters for list
// endpoints.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a sanitized page/limit pair. Page is at least 1 and Limit is
// always within [1, MaxLimit].
type Params struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Parse reads page and limit from the request query, falling back to the
// defaults on missing or malformed values and capping oversized limits.
func Parse(c *gin.Context) Params {
	page := queryInt(c, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := queryInt(c, "limit", DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}
