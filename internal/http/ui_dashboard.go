package httpx

import (
	"net/http"

	"github.com/JULEEP/admin-frontend/internal/http/ui/viewmodel"
)

// Index serves the home page with dashboard content.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(PageMeta{
		Title:       "Dashboard - Back Office",
		PageTitle:   "Dashboard",
		CurrentPage: PageDashboard,
	})

	if h.Dashboard != nil {
		sess, _ := SessionFromContext(r.Context())
		dash := viewmodel.NewDashboard(h.Dashboard.Summary(r.Context(), sess.APIToken))
		data.Dashboard = &dash
	}
	h.renderPage(w, r, data)
}
