package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"asafe-api/internal/domain"
)

const MaxJSONBody = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// DecodeJSON reads a JSON object from the request body into dst. A body with a
// non-JSON content type yields domain.ErrUnsupportedMediaType; malformed JSON
// yields a *domain.ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != "application/json" && !strings.HasSuffix(mt, "+json")) {
			return domain.ErrUnsupportedMediaType
		}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		v := &domain.ValidationError{}
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			v.Add("body", "Request body is required")
		case errors.As(err, &maxErr):
			v.Add("body", "Request body is too large")
		default:
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				v.Add(typeErr.Field, "Expected "+typeErr.Type.String())
			} else {
				v.Add("body", "Malformed JSON")
			}
		}
		return v
	}
	return nil
}
