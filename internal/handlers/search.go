package handlers

import (
	"net/http"
	"strings"

	"github.com/pathsixdesigns/pathsix-crm/internal/httpx"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
)

// SearchHandler serves the cross-entity search page.
type SearchHandler struct {
	Svc *services.SearchService
}

func NewSearchHandler(svc *services.SearchService) *SearchHandler {
	return &SearchHandler{Svc: svc}
}

// Search: GET /search?q= - each entity only appears in its own result list.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	results, err := h.Svc.Search(query)
	if err != nil {
		serverError(w, r, "search", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, results)
		return
	}
	renderTemplate(w, r, "search.html", map[string]any{
		"Query":   query,
		"Results": results,
		"Empty":   results.Empty(),
	})
}
