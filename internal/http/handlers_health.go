package httpx

import (
	"net/http"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Views  int    `json:"views"`
	// Resources counts mounted views per resource; omitted when none are mounted.
	Resources map[string]int `json:"resources,omitempty"`
}

// healthHandler returns a 200 OK status for readiness/liveness checks along with
// the number of mounted views.
func healthHandler(views ViewRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		resp := healthResponse{Status: "ok"}
		if views != nil {
			mounted := views.Mounted()
			resp.Views = len(mounted)
			for _, m := range mounted {
				if resp.Resources == nil {
					resp.Resources = make(map[string]int)
				}
				resp.Resources[m.Resource]++
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
