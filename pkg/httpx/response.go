package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every response that can carry tokens goes through this.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Redirect issues a non-cacheable 303 redirect.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	NoCache(w)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// FormString returns the trimmed form value for key.
func FormString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
