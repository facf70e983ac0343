package handler

import "net/http"

type healthResponse struct {
	Status         string `json:"status"`
	BackendHealthy *bool  `json:"backend_healthy,omitempty"`
}

// HealthHandler reports liveness. The status is "degraded" while
// backendHealthy reports false; the response code stays 200. A nil
// backendHealthy omits the backend from the report.
func HealthHandler(backendHealthy func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if backendHealthy != nil {
			healthy := backendHealthy()
			resp.BackendHealthy = &healthy
			if !healthy {
				resp.Status = "degraded"
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
