package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"mealmate/internal/advisor"
	"mealmate/internal/planner"
	"mealmate/internal/session"
	"mealmate/internal/shared"

	"go.uber.org/zap"
)

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, token, expires, err := s.services.Tokens.Issue()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.saveSession(r.Context(), session.New(id, time.Now().UTC())); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Token: token, ExpiresAt: expires})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.services.Planner.Plan(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	st := sessionFrom(r.Context())
	st.SetPlan(res)
	if err := s.saveSession(r.Context(), st); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) currentPlan(st *session.State) (*planner.Result, error) {
	if st.Plan == nil {
		return nil, shared.NewNotFoundError("no meal plan has been generated for this session")
	}
	return st.Plan, nil
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	res, err := s.currentPlan(sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCurrentPlanCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.currentPlan(sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := res.Plan.WriteCSV(&buf); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeText(w, "text/csv", "meal_plan.csv", buf.String())
}

// ShoppingRequest asks for the shopping list of the current plan.
type ShoppingRequest struct {
	Servings int `json:"servings"`
}

// handleShoppingList compiles the list on first use and afterwards only
// rescales the stored basis.
func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	var req ShoppingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Servings < 1 {
		s.writeError(w, shared.NewValidationError("servings must be at least 1, got %d", req.Servings))
		return
	}

	st := sessionFrom(r.Context())
	plan, err := s.currentPlan(st)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if st.Shopping == nil {
		basis := s.services.Shopping.Basis(r.Context(), plan.Plan)
		st.Shopping = &basis
		if err := s.saveSession(r.Context(), st); err != nil {
			s.logger.Warn("failed to store shopping basis", zap.String("session_id", st.ID), zap.Error(err))
		}
	}

	res, err := s.services.Shopping.Rescale(r.Context(), *st.Shopping, req.Servings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleShoppingListText(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if st.Shopping == nil {
		s.writeError(w, shared.NewNotFoundError("no shopping list has been compiled for this session"))
		return
	}

	servings := 1
	if raw := r.URL.Query().Get("servings"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, shared.NewValidationError("servings must be a positive integer, got %q", raw))
			return
		}
		servings = n
	}

	s.writeText(w, "text/plain; charset=utf-8", "shopping_list.txt", st.Shopping.Scale(servings).Text())
}

// CaloriesResponse is the daily calorie estimate.
type CaloriesResponse struct {
	CaloricNeeds float64 `json:"caloric_needs"`
}

func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	var p advisor.Profile
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.services.Planner.Validate(planner.Request{Profile: p}); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CaloriesResponse{CaloricNeeds: advisor.Calories(p)})
}
