package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/darasa-app/darasa/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Pagination binds page/page_size query params; page numbers start at 1 and
// page_size is capped at maxSize.
type Pagination struct {
	Page     int
	PageSize int

	maxSize int
}

func newPagination(defaultSize, maxSize int) Pagination {
	return Pagination{Page: 1, PageSize: defaultSize, maxSize: maxSize}
}

func (p *Pagination) Bind(ctx echo.Context) {
	if v := ctx.QueryParam(pageParam); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			p.Page = page
		}
	}
	if v := ctx.QueryParam(pageSizeParam); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			if size > p.maxSize {
				size = p.maxSize
			}
			p.PageSize = size
		}
	}
}

func (p Pagination) Limit() int  { return p.PageSize }
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// Page is the paginated list envelope.
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// newPage builds the envelope, deriving next/previous page links from the
// current request URL.
func newPage(ctx echo.Context, p Pagination, count int, results interface{}) Page {
	page := Page{Count: count, Results: results}

	if p.Offset()+p.PageSize < count {
		page.Next = pageURL(ctx, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(ctx, p.Page-1)
	}
	return page
}

func pageURL(ctx echo.Context, page int) *string {
	req := ctx.Request()
	u := *req.URL
	q := u.Query()
	if page > 1 {
		q.Set(pageParam, strconv.Itoa(page))
	} else {
		q.Del(pageParam)
	}
	u.RawQuery = q.Encode()

	url := ctx.Scheme() + "://" + req.Host + u.RequestURI()
	return &url
}
