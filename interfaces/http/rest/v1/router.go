package v1

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// NewRouter creates the legacy v1 API router. The v1 surface predates the
// relationship and quota endpoints; every route now answers with a
// permanent redirect to its v2 equivalent so old clients keep working
// through one deprecation cycle.
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.Use(versionHeaders)

	v1.HandleFunc("/health", healthCheck).Methods("GET")
	v1.PathPrefix("/").HandlerFunc(redirectToV2)

	return router
}

// redirectToV2 maps a v1 path onto the v2 surface
func redirectToV2(w http.ResponseWriter, r *http.Request) {
	target := strings.Replace(r.URL.Path, "/api/v1", "/api/v2", 1)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
