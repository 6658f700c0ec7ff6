package api

import (
	"net/url"
	"strconv"
)

// Default paging values shared by every list endpoint.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListParams are the limit/offset paging parameters plus entity-specific
// filters (date, status, providerId, ...).
type ListParams struct {
	Limit   int
	Offset  int
	Filters map[string]string
}

// Values encodes the params as a query string, clamping limits the same way
// the backend does.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// WithFilter returns a copy of the params with one more filter set.
func (p ListParams) WithFilter(key, value string) ListParams {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[key] = value
	p.Filters = filters
	return p
}
