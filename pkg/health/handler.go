package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler always responds OK while the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Report{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and responds 503 if any fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := Run(r.Context(), checks, opts...)

		code := http.StatusOK
		if !report.Healthy() {
			code = http.StatusServiceUnavailable
		}
		write(w, r, code, report)
	}
}

func write(w http.ResponseWriter, r *http.Request, code int, report *Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(report.Status))
}
