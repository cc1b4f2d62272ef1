package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/parse"
	"github.com/claude/pulselift/internal/storage"
	"github.com/claude/pulselift/internal/workout"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource, Generator, and Advisor by calling
// the PulseLift REST API. Used for remote MCP mode where the binary runs
// locally (stdio) but the pipeline lives on the remote server (accessed
// over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// API key is sent on endpoints that spend model tokens.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// Generation holds the connection for the full model round trip.
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	return c.do(req, path)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	return c.do(req, path)
}

func (c *HTTPClient) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) GetExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) FetchWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) FetchExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseLog, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+workoutID.String()+"/logs", nil)
	if err != nil {
		return nil, err
	}

	var logs []models.ExerciseLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode logs: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) FetchWorkoutSummary(ctx context.Context, workoutID uuid.UUID) (*models.WorkoutSummary, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+workoutID.String()+"/summary", nil)
	if err != nil {
		return nil, err
	}

	var s models.WorkoutSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("httpclient: decode summary: %w", err)
	}
	return &s, nil
}

func (c *HTTPClient) Generate(ctx context.Context, req workout.Request) (*models.Workout, error) {
	predefined := make([]string, 0, len(req.Predefined))
	for _, ex := range req.Predefined {
		predefined = append(predefined, ex.Name)
	}

	payload := map[string]any{
		"userId":    req.UserID,
		"bodyParts": req.BodyParts,
		"goal":      req.Goal,
	}
	if len(predefined) > 0 {
		payload["predefinedExercises"] = predefined
	}
	if req.RequireVideo {
		payload["requireVideo"] = true
	}
	if len(req.PrioritizedAuthors) > 0 {
		payload["prioritizedAuthors"] = req.PrioritizedAuthors
	}

	body, err := c.post(ctx, "/api/v1/workouts/generate", payload)
	if err != nil {
		return nil, err
	}

	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode generated workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) EstimateCaloriesBurned(ctx context.Context, s models.WorkoutSummary) (int, error) {
	body, err := c.post(ctx, "/api/v1/workouts/"+s.WorkoutID.String()+"/calories", map[string]any{})
	if err != nil {
		return 0, err
	}

	var result struct {
		Calories int `json:"calories"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("httpclient: decode calories: %w", err)
	}
	return result.Calories, nil
}

func (c *HTTPClient) RecommendMacros(ctx context.Context, goals string) (parse.NutritionFacts, error) {
	body, err := c.post(ctx, "/api/v1/nutrition/macros", map[string]string{"goals": goals})
	if err != nil {
		return parse.NutritionFacts{}, err
	}

	var facts parse.NutritionFacts
	if err := json.Unmarshal(body, &facts); err != nil {
		return parse.NutritionFacts{}, fmt.Errorf("httpclient: decode macros: %w", err)
	}
	return facts, nil
}

func (c *HTTPClient) AnalyzeMeal(ctx context.Context, title, description, caption string) (models.Meal, error) {
	body, err := c.post(ctx, "/api/v1/nutrition/meal", map[string]string{
		"title":       title,
		"description": description,
		"caption":     caption,
	})
	if err != nil {
		return models.Meal{}, err
	}

	var meal models.Meal
	if err := json.Unmarshal(body, &meal); err != nil {
		return models.Meal{}, fmt.Errorf("httpclient: decode meal: %w", err)
	}
	return meal, nil
}
