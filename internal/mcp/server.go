package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, gen Generator, adv Advisor, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PulseLift", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PulseLift workout generation server. Generate AI workouts from the exercise catalog, inspect workouts and logs, and estimate calories and macros."),
	)

	h := &handlers{ds: ds, gen: gen, adv: adv, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetWorkoutLogs, Handler: h.getWorkoutLogs},
		server.ServerTool{Tool: toolGetWorkoutSummary, Handler: h.getWorkoutSummary},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolEstimateCalories, Handler: h.estimateCalories},
		server.ServerTool{Tool: toolRecommendMacros, Handler: h.recommendMacros},
		server.ServerTool{Tool: toolAnalyzeMeal, Handler: h.analyzeMeal},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resBodyParts, Handler: h.bodyParts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	gen Generator
	adv Advisor
	log *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"pulselift://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("The full exercise catalog in catalog order, with body parts, videos, and default sets/reps"),
	mcp.WithMIMEType("application/json"),
)

var resBodyParts = mcp.NewResource(
	"pulselift://body_parts",
	"Body Part Vocabulary",
	mcp.WithResourceDescription("Accepted body part keys with their anatomical display names"),
	mcp.WithMIMEType("application/json"),
)
