package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/storage"
	"github.com/claude/pulselift/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type generateRequest struct {
	UserID             uuid.UUID   `json:"userId"`
	BodyParts          []string    `json:"bodyParts"`
	Goal               string      `json:"goal"`
	PredefinedNames    []string    `json:"predefinedExercises,omitempty"`
	RequireVideo       bool        `json:"requireVideo,omitempty"`
	PrioritizedAuthors []uuid.UUID `json:"prioritizedAuthors,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(payload.BodyParts) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bodyParts is required"})
		return
	}

	req := workout.Request{
		UserID:             payload.UserID,
		BodyParts:          payload.BodyParts,
		Goal:               payload.Goal,
		RequireVideo:       payload.RequireVideo,
		PrioritizedAuthors: payload.PrioritizedAuthors,
	}
	for _, name := range payload.PredefinedNames {
		req.Predefined = append(req.Predefined, models.Exercise{Name: name})
	}

	generated, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generated)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		UserID      uuid.UUID `json:"userId"`
		FromSummary bool      `json:"fromSummary,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var regenerated *models.Workout
	var err error
	if payload.FromSummary {
		var summary *models.WorkoutSummary
		summary, err = s.store.FetchWorkoutSummary(r.Context(), workoutID)
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no summary for workout"})
			return
		}
		if err == nil {
			summary.UserID = payload.UserID
			regenerated, err = s.generator.RegenerateFromSummary(r.Context(), *summary)
		}
	} else {
		regenerated, err = s.generator.RegenerateSaved(r.Context(), workoutID, payload.UserID)
	}
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, regenerated)
}

// handleUpdateWorkout updates session metadata (rating, completion,
// duration) on a stored workout. Logs are updated through their own
// endpoint; this never touches them.
func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Rating      *models.WorkoutRating `json:"rating"`
		IsCompleted *bool                 `json:"isCompleted"`
		Duration    *int                  `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.Rating != nil && !validRating(*payload.Rating) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown rating"})
		return
	}

	found, err := s.store.FetchWorkout(r.Context(), workoutID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if payload.Rating != nil {
		found.Rating = *payload.Rating
	}
	if payload.IsCompleted != nil {
		found.IsCompleted = *payload.IsCompleted
	}
	if payload.Duration != nil {
		found.Duration = *payload.Duration
	}
	found.UpdatedAt = time.Now()

	if err := s.store.SaveWorkout(r.Context(), *found); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func validRating(r models.WorkoutRating) bool {
	switch r {
	case models.RatingNone, models.RatingTooEasy, models.RatingJustRight, models.RatingTooHard:
		return true
	}
	return false
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := s.store.FetchWorkout(r.Context(), workoutID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	logs, err := s.store.FetchExerciseLogs(r.Context(), workoutID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	var l models.ExerciseLog
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if l.ID == uuid.Nil || l.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "log id and workoutId are required"})
		return
	}

	l.UpdatedAt = time.Now()
	if err := s.store.UpdateExerciseLog(r.Context(), l); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRecordSummary(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseID(w, r)
	if !ok {
		return
	}

	var summary models.WorkoutSummary
	if err := json.NewDecoder(r.Body).Decode(&summary); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	summary.WorkoutID = workoutID
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now()
	}

	if err := s.store.InsertWorkoutSummary(r.Context(), summary); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.store.GetExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if part := r.URL.Query().Get("bodyPart"); part != "" {
		targets := models.NormalizeBodyParts([]string{part})
		filtered := exercises[:0:0]
		for _, ex := range exercises {
			if ex.TargetsAny(targets) {
				filtered = append(filtered, ex)
			}
		}
		exercises = filtered
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGenerationState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"state": s.generator.State().String()})
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.generator.RefreshCatalog(r.Context()); err != nil {
		s.log.Error("catalog refresh failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": workout.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	content, err := s.store.GetPromptTemplate(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "content": content})
}

func (s *Server) handleUpsertTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if payload.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	if err := s.store.UpsertPromptTemplate(r.Context(), name, payload.Content); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "updated"})
}

// writeGenerationError logs the raw pipeline failure and returns only
// the user-facing message with a status matching the failure class.
func (s *Server) writeGenerationError(w http.ResponseWriter, err error) {
	s.log.Error("generation failed", "error", err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, workout.ErrGenerationInFlight):
		status = http.StatusConflict
	case errors.Is(err, workout.ErrProviderTimeout):
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]string{"error": workout.UserMessage(err)})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
