package handler

import (
	"net/http"
)

// Healthz handles GET /healthz. Liveness check, no authentication.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
