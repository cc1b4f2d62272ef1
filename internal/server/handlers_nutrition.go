package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/pulselift/internal/parse"
	"github.com/claude/pulselift/internal/storage"
)

func (s *Server) handleEstimateCalories(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	summary, err := s.store.FetchWorkoutSummary(r.Context(), workoutID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no summary for workout"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	calories, err := s.advisor.EstimateCaloriesBurned(r.Context(), *summary)
	if err != nil {
		s.writeAdvisorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"calories": calories})
}

func (s *Server) handleRecommendMacros(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Goals string `json:"goals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.Goals == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "goals is required"})
		return
	}

	facts, err := s.advisor.RecommendMacros(r.Context(), payload.Goals)
	if err != nil {
		s.writeAdvisorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facts)
}

func (s *Server) handleAnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Caption     string `json:"caption,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}

	meal, err := s.advisor.AnalyzeMeal(r.Context(), payload.Title, payload.Description, payload.Caption)
	if err != nil {
		s.writeAdvisorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// writeAdvisorError distinguishes a model that answered badly from a
// model that did not answer at all.
func (s *Server) writeAdvisorError(w http.ResponseWriter, err error) {
	s.log.Error("nutrition request failed", "error", err)

	var malformed *parse.MalformedResponseError
	if errors.As(err, &malformed) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "the model returned an unusable answer"})
		return
	}
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "nutrition service unavailable"})
}
