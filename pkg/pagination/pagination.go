package pagination

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const MaxLimit = 100

// Params holds pagination parameters extracted from a request. A zero Limit
// means the caller asked for everything.
type Params struct {
	Limit  int
	Offset int
}

// Unbounded reports whether no page size was requested.
func (p Params) Unbounded() bool { return p.Limit == 0 }

// FromContext reads the optional limit and offset query parameters. Limits
// above MaxLimit are capped. Non-numeric or negative values are rejected.
func FromContext(c echo.Context) (Params, error) {
	var p Params
	var err error
	if p.Limit, err = intParam(c, "limit"); err != nil {
		return Params{}, err
	}
	if p.Offset, err = intParam(c, "offset"); err != nil {
		return Params{}, err
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// Page returns the slice of items selected by p.
func Page[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if !p.Unbounded() && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return !p.Unbounded() && p.Offset+p.Limit < total
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}
