package api

import (
	"encoding/json"
	"fmt"
)

// ErrorBody is the error half of the standard response envelope.
type ErrorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Envelope is the standard response wrapper
// {success, data, error, timestamp}. Some generated endpoints return raw
// payloads instead; decodePayload normalizes both shapes.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// List is the paginated collection shape shared by every list endpoint.
type List[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// envelopeProbe distinguishes enveloped bodies from raw payloads: only the
// envelope carries a boolean success field.
type envelopeProbe struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
}

// decodePayload returns the data portion of the body, unwrapping the
// standard envelope when present and passing raw payloads through.
func decodePayload(status int, body []byte) (json.RawMessage, error) {
	var probe envelopeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		// Raw arrays and scalars do not decode into the probe; treat the
		// body as the payload itself.
		return body, nil
	}
	if probe.Success == nil {
		return body, nil
	}
	if !*probe.Success {
		apiErr := &APIError{Status: status, Message: "request failed"}
		if probe.Error != nil {
			apiErr.Code = probe.Error.Code
			apiErr.Message = probe.Error.Message
		}
		return nil, apiErr
	}
	if probe.Data == nil {
		return nil, fmt.Errorf("envelope marked success but carried no data")
	}
	return probe.Data, nil
}
