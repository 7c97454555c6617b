package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"calorina/internal/catalog"
	"calorina/internal/shared"
)

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Users.Users())
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	var meal catalog.Meal
	if err := decode(r, &meal); err != nil {
		s.fail(w, r, err)
		return
	}
	added, err := s.Catalog.AddMeal(meal)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("meal added", "id", added.ID, "name", added.Name)
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleAddDrink(w http.ResponseWriter, r *http.Request) {
	var drink catalog.Drink
	if err := decode(r, &drink); err != nil {
		s.fail(w, r, err)
		return
	}
	added, err := s.Catalog.AddDrink(drink)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

type importRequest struct {
	URL      string           `json:"url"`
	Category catalog.Category `json:"category"`
	Time     catalog.Time     `json:"time"`
	Price    float64          `json:"price"`
}

// handleImportMeal reads a recipe page and adds it to the market.
func (s *Server) handleImportMeal(w http.ResponseWriter, r *http.Request) {
	if s.Importer == nil {
		writeError(w, http.StatusNotImplemented, "meal import is not configured")
		return
	}
	var req importRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		writeError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}

	draft, err := s.Importer.ImportURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			s.fail(w, r, err)
			return
		}
		s.logger.Warn("meal import failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	added, err := s.Catalog.AddMeal(draft.Meal(req.Category, req.Time, req.Price))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("meal imported", "id", added.ID, "url", req.URL)
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleSetBackground(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.Catalog.SetBackgroundImage(req.URL)
	w.WriteHeader(http.StatusNoContent)
}
