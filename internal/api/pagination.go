package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const defaultPageSize = 6

type pageParams struct {
	Page  int
	Limit int
}

// parsePage reads the page and limit query parameters
func parsePage(c *gin.Context) (pageParams, error) {
	p := pageParams{Page: 1, Limit: defaultPageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, &service.ValidationError{Field: "page", Message: "page must be a positive integer"}
		}
		p.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, &service.ValidationError{Field: "limit", Message: "limit must be a positive integer"}
		}
		p.Limit = n
	}
	return p, nil
}

// paginate slices items to the requested page and links the neighbouring pages
func paginate[T any](c *gin.Context, items []T, p pageParams) types.Page[T] {
	total := len(items)
	// page and limit are unbounded, so compare by division to avoid overflow
	start := total
	if p.Page-1 <= total/p.Limit {
		start = min((p.Page-1)*p.Limit, total)
	}
	end := total
	if p.Limit < total-start {
		end = start + p.Limit
	}

	page := types.Page[T]{
		Count:   int64(total),
		Results: items[start:end],
	}
	if end < total {
		page.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 && start > 0 {
		page.Previous = pageURL(c, p.Page-1)
	}
	return page
}

func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	s := u.String()
	return &s
}
