package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/storage"
	"github.com/claude/pulselift/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// splitList parses a comma-separated tool argument into trimmed entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseWorkoutID(req mcp.CallToolRequest) (uuid.UUID, error) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return uuid.Nil, errors.New("workout_id parameter is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, errors.New("workout_id is not a valid UUID")
	}
	return id, nil
}

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a new workout from the exercise catalog. Selects candidate exercises for the requested body parts, asks the model to group them, reconciles the answer against the catalog, and persists the session."),
	mcp.WithString("body_parts", mcp.Required(), mcp.Description("Comma-separated body parts (e.g. 'quads, abs'). 'back' expands to lats, traps, and rhomboids.")),
	mcp.WithString("goal", mcp.Description("Training goal in plain language (e.g. 'build muscle', 'endurance')")),
	mcp.WithString("predefined", mcp.Description("Comma-separated exercise names that must appear in the workout")),
	mcp.WithBoolean("require_video", mcp.Description("Only select exercises that have a demonstration video")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Fetch a workout by ID, including its exercise references and logs."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetWorkoutLogs = mcp.NewTool("get_workout_logs",
	mcp.WithDescription("Fetch the per-exercise logs of a workout with recorded sets, reps, and weights."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetWorkoutSummary = mcp.NewTool("get_workout_summary",
	mcp.WithDescription("Fetch the completion summary of a workout: completed exercises, timing, and body parts trained."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog, optionally filtered to a body part. 'back' expands to its constituent muscle groups."),
	mcp.WithString("body_part", mcp.Description("Filter to one body part (e.g. 'quads', 'back')")),
)

var toolEstimateCalories = mcp.NewTool("estimate_calories",
	mcp.WithDescription("Estimate calories burned during a completed workout from its summary. Asks the model for a single numeric figure."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID with a recorded summary")),
)

var toolRecommendMacros = mcp.NewTool("recommend_macros",
	mcp.WithDescription("Recommend daily macronutrient targets for a stated goal. Calories are recomputed from the macros (4/4/9)."),
	mcp.WithString("goals", mcp.Required(), mcp.Description("Nutrition goals in plain language (e.g. 'cut to 80kg while keeping strength')")),
)

var toolAnalyzeMeal = mcp.NewTool("analyze_meal",
	mcp.WithDescription("Estimate the macros of a described meal and classify it against the fixed food category vocabulary."),
	mcp.WithString("title", mcp.Description("Short meal title (e.g. 'Lunch')")),
	mcp.WithString("description", mcp.Required(), mcp.Description("What the meal contained")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partsStr, err := req.RequireString("body_parts")
	if err != nil {
		return mcp.NewToolResultError("body_parts parameter is required"), nil
	}
	parts := splitList(partsStr)
	if len(parts) == 0 {
		return mcp.NewToolResultError("body_parts must name at least one body part"), nil
	}

	genReq := workout.Request{
		UserID:       UserIDFromContext(ctx),
		BodyParts:    parts,
		Goal:         req.GetString("goal", ""),
		RequireVideo: req.GetBool("require_video", false),
	}
	for _, name := range splitList(req.GetString("predefined", "")) {
		genReq.Predefined = append(genReq.Predefined, models.Exercise{Name: name})
	}

	generated, err := h.gen.Generate(ctx, genReq)
	if err != nil {
		h.log.Error("mcp generate_workout", "error", err)
		return mcp.NewToolResultError(workout.UserMessage(err)), nil
	}

	result, err := mcp.NewToolResultJSON(generated)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseWorkoutID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	found, err := h.ds.FetchWorkout(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("workout not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(found)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseWorkoutID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logs, err := h.ds.FetchExerciseLogs(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseWorkoutID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := h.ds.FetchWorkoutSummary(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("no summary recorded for this workout"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.GetExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if part := req.GetString("body_part", ""); part != "" {
		targets := models.NormalizeBodyParts([]string{part})
		if len(targets) == 0 {
			return mcp.NewToolResultError("unknown body part: " + part), nil
		}
		var filtered []models.Exercise
		for _, ex := range exercises {
			if ex.TargetsAny(targets) {
				filtered = append(filtered, ex)
			}
		}
		exercises = filtered
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) estimateCalories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := parseWorkoutID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := h.ds.FetchWorkoutSummary(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("no summary recorded for this workout"), nil
	}
	if err != nil {
		h.log.Error("mcp estimate_calories summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	calories, err := h.adv.EstimateCaloriesBurned(ctx, *summary)
	if err != nil {
		h.log.Error("mcp estimate_calories", "error", err)
		return mcp.NewToolResultError("estimation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]int{"calories": calories})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) recommendMacros(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := req.RequireString("goals")
	if err != nil {
		return mcp.NewToolResultError("goals parameter is required"), nil
	}

	facts, err := h.adv.RecommendMacros(ctx, goals)
	if err != nil {
		h.log.Error("mcp recommend_macros", "error", err)
		return mcp.NewToolResultError("recommendation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(facts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) analyzeMeal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description parameter is required"), nil
	}

	meal, err := h.adv.AnalyzeMeal(ctx, req.GetString("title", ""), description, "")
	if err != nil {
		h.log.Error("mcp analyze_meal", "error", err)
		return mcp.NewToolResultError("analysis failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(meal)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
