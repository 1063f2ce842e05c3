package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

const maxJSONBody = 1 << 20

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads one JSON object into dst, rejecting unknown fields and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large: %w", contest.ErrPayloadTooLarge)
		case errors.Is(err, io.EOF):
			return contest.Invalid("body", "request body is required")
		default:
			return contest.Invalid("body", err.Error())
		}
	}
	if dec.More() {
		return contest.Invalid("body", "request body must contain a single JSON object")
	}
	return nil
}
