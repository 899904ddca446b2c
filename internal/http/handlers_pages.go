package httpx

import (
	"net/http"

	"github.com/UdayGopi/Dental-Clinic/internal/domain/routing"
)

// PageHandlers renders the landing page and the portal page shells.
// Access control happens in Guard; these handlers render whatever reaches them.
type PageHandlers struct {
	Renderer *TemplateRenderer
}

// Landing renders the public welcome page.
// GET /.
func (h *PageHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	m, _ := ManagerFromContext(r.Context())
	h.render(w, "landing", newPageData(m, routing.PathLanding))
}

// Portal renders the shared layout for a protected page.
// GET /dashboard, /patients, ... (see routing.ProtectedPaths).
func (h *PageHandlers) Portal(w http.ResponseWriter, r *http.Request) {
	m, _ := ManagerFromContext(r.Context())
	h.render(w, "layout", newPageData(m, r.URL.Path))
}

func (h *PageHandlers) render(w http.ResponseWriter, name string, data PageData) {
	if err := h.Renderer.Render(w, http.StatusOK, name, data); err != nil {
		h.Renderer.RenderError(w, http.StatusInternalServerError, "Unable to render page")
	}
}
