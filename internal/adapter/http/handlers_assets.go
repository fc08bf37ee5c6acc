package adapthttp

import (
	"net/http"

	"paraeval/internal/domain"
)

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.assets.Menu()})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	page, err := s.assets.Page(r.Context(), r.PathValue("slug"))
	s.respond(w, r, page, err)
}

func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.assets.List(r.Context(), domain.AssetCategory(r.PathValue("category")))
	s.respond(w, r, map[string]any{"items": items}, err)
}

func (s *Server) handleAssetFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, err := s.assets.Path(r.Context(), domain.AssetCategory(r.PathValue("category")), r.PathValue("name"))
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}
	http.ServeFile(w, r, p)
}
