package httpx

import (
	"net/http"

	"github.com/JULEEP/admin-frontend/internal/domain/view"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
)

// ViewHandlers serves the JSON view of a session's mounted resource view.
type ViewHandlers struct {
	UI *UIHandlers
}

// Get serves GET /api/views/{resource}. The session's view is mounted when it
// shows a different resource, and the response waits for the initial list.
func (h *ViewHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session required", http.StatusUnauthorized)
		return
	}
	resource := r.PathValue("resource")
	if errs := validatePath(r); len(errs) > 0 {
		WriteAppError(w, apperrors.NotFoundf("unknown resource %q", resource))
		return
	}

	v, mounted := h.UI.Views.Current(sess.ID, resource)
	if !mounted {
		var err error
		if v, err = h.UI.Views.Ensure(sess, resource); err != nil {
			WriteAppError(w, err)
			return
		}
	}
	if err := h.UI.settle(r.Context(), v); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, viewResponse{Snapshot: v.Snapshot(), Title: v.Descriptor().Title})
}

type viewResponse struct {
	view.Snapshot
	Title string `json:"title"`
}
