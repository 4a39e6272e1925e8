package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the response body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// List converts items with conv and writes them as a 200 JSON array. An
// empty input is written as [] rather than null.
func List[T, R any](w http.ResponseWriter, items []T, conv func(T) R) {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, conv(it))
	}
	JSON(w, http.StatusOK, out)
}

// NoContent writes a bare 204
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
