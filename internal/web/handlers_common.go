package web

// handlers_common.go holds request parsing helpers shared by handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// MaxBodySize is the maximum accepted JSON request body (1MB).
const MaxBodySize = 1 << 20

// decodeJSON decodes the request body into dst. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	present, err := decodeOptionalJSON(w, r, dst)
	if err != nil {
		return err
	}
	if !present {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	return nil
}

// decodeOptionalJSON decodes the request body into dst and reports whether
// there was a body at all.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return true, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
