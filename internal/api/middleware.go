// Package api implements the weekplan REST API using chi.
package api

import (
	"mime"
	"net/http"
)

// RequireJSON rejects request bodies that declare a content type other than
// application/json. Requests without a body or without a Content-Type pass.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody("content type must be application/json"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NoStore marks every response as uncacheable; views rely on the stream for
// freshness.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
