package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"luminahealth.io/client-go/pkg/validate"
)

// GetJSON performs a GET and checks the decoded payload against the schema
// before it reaches application code. Contract violations are returned as
// validate.Violations, never silently coerced.
func GetJSON[T any](ctx context.Context, c *Client, path string, query url.Values, schema validate.Schema[T]) (T, error) {
	var zero T
	payload, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return zero, err
	}
	return validate.DecodeAndValidate[T](schema, payload)
}

// GetList performs a GET against a paginated endpoint and validates every
// item in the page.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values, schema validate.Schema[T]) (List[T], error) {
	payload, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return List[T]{}, err
	}
	var page List[T]
	if err := json.Unmarshal(payload, &page); err != nil {
		return List[T]{}, fmt.Errorf("failed to decode list payload: %w", err)
	}
	var errs validate.Violations
	for i, item := range page.Items {
		for _, v := range schema.Validate(item) {
			v.Path = fmt.Sprintf("items[%d].%s", i, v.Path)
			errs = append(errs, v)
		}
	}
	if len(errs) > 0 {
		return List[T]{}, errs
	}
	return page, nil
}

// PostJSON performs a POST with a JSON body and validates the response.
func PostJSON[T any](ctx context.Context, c *Client, path string, body interface{}, schema validate.Schema[T]) (T, error) {
	var zero T
	payload, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return zero, err
	}
	return validate.DecodeAndValidate[T](schema, payload)
}

// PutJSON performs a PUT with a JSON body and validates the response.
func PutJSON[T any](ctx context.Context, c *Client, path string, body interface{}, schema validate.Schema[T]) (T, error) {
	var zero T
	payload, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return zero, err
	}
	return validate.DecodeAndValidate[T](schema, payload)
}

// Delete performs a DELETE and discards any response body.
func Delete(ctx context.Context, c *Client, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// PostRaw performs a POST and returns the normalized payload without a
// schema check. Auth endpoints use it for opaque token exchanges.
func PostRaw(ctx context.Context, c *Client, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// GetRaw performs a GET and returns the normalized payload without a schema
// check.
func GetRaw(ctx context.Context, c *Client, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Reply is the error-shaped alternative to the throwing helpers: call sites
// that prefer branching over error propagation receive the violation list
// or transport error inline.
type Reply[T any] struct {
	Value      T
	Violations validate.Violations
	Err        error
}

// OK reports whether the reply carries a usable value.
func (r Reply[T]) OK() bool {
	return r.Err == nil && len(r.Violations) == 0
}

// TryGetJSON is GetJSON with the failure folded into the reply instead of
// an error return.
func TryGetJSON[T any](ctx context.Context, c *Client, path string, query url.Values, schema validate.Schema[T]) Reply[T] {
	value, err := GetJSON[T](ctx, c, path, query, schema)
	if err == nil {
		return Reply[T]{Value: value}
	}
	var errs validate.Violations
	if ok := asViolations(err, &errs); ok {
		return Reply[T]{Value: value, Violations: errs}
	}
	return Reply[T]{Value: value, Err: err}
}

func asViolations(err error, target *validate.Violations) bool {
	v, ok := err.(validate.Violations)
	if ok {
		*target = v
	}
	return ok
}
