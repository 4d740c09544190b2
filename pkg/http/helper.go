package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "villaops/pkg/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body. Unknown
// fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		return apperrors.InvalidInput(fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}

// ParseTimeParam reads an RFC3339 or YYYY-MM-DD query parameter. A missing
// parameter yields the zero time.
func ParseTimeParam(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, s))
}
