package mockehr

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/api"
)

// writeData wraps the payload in the standard response envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	encoded, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response payload")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.Envelope{
		Success:   true,
		Data:      encoded,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.Envelope{
		Success:   false,
		Error:     &api.ErrorBody{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode JSON request")
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON format")
		return false
	}
	return true
}

// paging reads and clamps the limit/offset query parameters.
func paging(r *http.Request) (limit, offset int) {
	limit = api.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > api.MaxLimit {
		limit = api.MaxLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// page slices a filtered result set into the standard list shape.
func page[T any](items []T, limit, offset int) api.List[T] {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := api.List[T]{
		Items:  items[offset:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out
}
