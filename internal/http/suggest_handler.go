package httpapi

import (
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/suggest"
)

type suggestionsResponse struct {
	Query   string               `json:"query"`
	Results []suggest.Suggestion `json:"results"`
}

// Suggestions never fails; an unavailable backend yields no results.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	results := []suggest.Suggestion{}
	if q != "" && h.search != nil {
		if found := h.search.Search(r.Context(), q); found != nil {
			results = found
		}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Query: q, Results: results})
}
