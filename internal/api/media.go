package api

import (
	"net/http"
	"strconv"

	"mealmate/internal/companion"
	"mealmate/internal/shared"
	"mealmate/internal/tmdb"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleMediaSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.services.Companion.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []tmdb.SearchResult{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func mediaParams(r *http.Request) (string, int, error) {
	mediaType := chi.URLParam(r, "type")
	if err := tmdb.ValidateMediaType(mediaType); err != nil {
		return "", 0, err
	}
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return "", 0, shared.NewValidationError("invalid media id %q", raw)
	}
	return mediaType, id, nil
}

// selectedMedia returns the session's selected title when it matches the
// route, otherwise fetches it and makes it the selection.
func (s *Server) selectedMedia(r *http.Request) (*tmdb.Media, error) {
	mediaType, id, err := mediaParams(r)
	if err != nil {
		return nil, err
	}

	st := sessionFrom(r.Context())
	if st.Media != nil && st.Media.ID == id && st.Media.MediaType == mediaType {
		return st.Media, nil
	}

	m, err := s.services.Companion.Details(r.Context(), mediaType, id)
	if err != nil {
		return nil, err
	}
	st.SetMedia(m)
	if err := s.saveSession(r.Context(), st); err != nil {
		s.logger.Warn("failed to store selected media", zap.String("session_id", st.ID), zap.Error(err))
	}
	return m, nil
}

func (s *Server) handleMediaDetails(w http.ResponseWriter, r *http.Request) {
	m, err := s.selectedMedia(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	mediaType, id, err := mediaParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := s.services.Companion.Recommendations(r.Context(), mediaType, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []tmdb.Recommendation{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": recs})
}

// handlePairings returns one course when food_type is given, all of them
// otherwise.
func (s *Server) handlePairings(w http.ResponseWriter, r *http.Request) {
	m, err := s.selectedMedia(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var pairings []companion.Pairing
	if ft := r.URL.Query().Get("food_type"); ft != "" {
		p, err := s.services.Companion.Pairings(r.Context(), m, ft)
		if err != nil {
			s.writeError(w, err)
			return
		}
		pairings = []companion.Pairing{p}
	} else {
		pairings, err = s.services.Companion.AllPairings(r.Context(), m)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"title": m.Title, "pairings": pairings})
}

func (s *Server) handleDishes(w http.ResponseWriter, r *http.Request) {
	m, err := s.selectedMedia(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"title":          m.Title,
		"recommendation": companion.DishRecommendation(m),
	})
}

// ChatRequest is a question about the selected title.
type ChatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.selectedMedia(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	reply, err := s.services.Companion.Chat(r.Context(), m, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// GroceryRequest builds a grocery list from picked recipes, or rescales the
// session's last one when RecipeIDs is empty.
type GroceryRequest struct {
	RecipeIDs []int `json:"recipe_ids"`
	Servings  int   `json:"servings"`
}

// GroceryResponse carries the scaled list and its rendered text.
type GroceryResponse struct {
	*companion.Grocery
	Text string `json:"text"`
}

func (s *Server) handleGrocery(w http.ResponseWriter, r *http.Request) {
	var req GroceryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	st := sessionFrom(r.Context())
	var (
		g   *companion.Grocery
		err error
	)
	if len(req.RecipeIDs) == 0 {
		if st.Grocery == nil {
			s.writeError(w, shared.NewValidationError("at least one recipe must be selected"))
			return
		}
		g, err = companion.RescaleGrocery(*st.Grocery, req.Servings)
	} else {
		g, err = s.services.Companion.Grocery(r.Context(), req.RecipeIDs, req.Servings)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	st.Grocery = &g.Basis
	if err := s.saveSession(r.Context(), st); err != nil {
		s.logger.Warn("failed to store grocery basis", zap.String("session_id", st.ID), zap.Error(err))
	}
	s.writeJSON(w, http.StatusOK, GroceryResponse{Grocery: g, Text: g.List.Text()})
}
