package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/pulselift/internal/history"
	"github.com/claude/pulselift/internal/llm"
	"github.com/claude/pulselift/internal/mcp"
	"github.com/claude/pulselift/internal/models"
	"github.com/claude/pulselift/internal/workout"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "PulseLift server URL (e.g. https://pulselift.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "server API key (or PULSELIFT_AUTH_API_KEY)")
	parts := flag.String("parts", "", "comma-separated body parts (e.g. 'quads,abs' or 'back')")
	goal := flag.String("goal", "", "training goal in plain language")
	predefined := flag.String("predefined", "", "comma-separated exercise names that must appear")
	requireVideo := flag.Bool("require-video", false, "only select exercises with a demonstration video")
	user := flag.String("user", "", "user UUID (defaults to a random one)")
	recent := flag.Int("recent", 0, "list the N most recent local generations and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio against the remote server")
	ask := flag.String("ask", "", "stream a quick training question to the model and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("pulselift-gen", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *apiKey == "" {
		*apiKey = os.Getenv("PULSELIFT_AUTH_API_KEY")
	}

	if *ask != "" {
		if err := runAsk(*ask, log); err != nil {
			log.Error("ask failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *recent > 0 {
		if err := listRecent(*recent); err != nil {
			log.Error("history failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: pulselift-gen -server <URL> -parts <bodyParts> [-goal ...] [-predefined ...]\n")
		fmt.Fprintf(os.Stderr, "       pulselift-gen -server <URL> -mcp\n")
		fmt.Fprintf(os.Stderr, "       pulselift-gen -recent N\n")
		fmt.Fprintf(os.Stderr, "       pulselift-gen -ask \"question\"\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), *apiKey)

	if *mcpMode {
		s := mcp.New(client, client, client, Version, log)
		if err := mcpserver.ServeStdio(s); err != nil {
			log.Error("mcp server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *parts == "" {
		fmt.Fprintf(os.Stderr, "Error: -parts is required\n")
		os.Exit(1)
	}

	if err := runGenerate(client, *parts, *goal, *predefined, *user, *requireVideo, log); err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func runGenerate(client *mcp.HTTPClient, parts, goal, predefined, user string, requireVideo bool, log *slog.Logger) error {
	userID := uuid.New()
	if user != "" {
		parsed, err := uuid.Parse(user)
		if err != nil {
			return fmt.Errorf("invalid user UUID: %w", err)
		}
		userID = parsed
	}

	req := workout.Request{
		UserID:       userID,
		BodyParts:    splitCSV(parts),
		Goal:         goal,
		RequireVideo: requireVideo,
	}
	for _, name := range splitCSV(predefined) {
		req.Predefined = append(req.Predefined, models.Exercise{Name: name})
	}

	generated, err := client.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	printWorkout(generated)

	if err := recordHistory(generated, req); err != nil {
		// History is best effort; the workout is already persisted server-side.
		log.Warn("failed to record local history", "error", err)
	}
	return nil
}

func printWorkout(w *models.Workout) {
	fmt.Printf("Workout %s by %s (%d min)\n", w.ID, w.Author, w.Duration)

	group := -1
	for _, ref := range w.Exercises {
		if ref.GroupID != group {
			group = ref.GroupID
			fmt.Printf("\nGroup %d:\n", group+1)
		}
		fmt.Printf("  %s  %d x %d", ref.Exercise.Name, ref.Exercise.Sets, ref.Exercise.Reps)
		if ref.Exercise.IsBodyWeight {
			fmt.Print("  (bodyweight)")
		}
		fmt.Println()
	}
}

func recordHistory(w *models.Workout, req workout.Request) error {
	dir, err := historyDir()
	if err != nil {
		return err
	}
	h, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer h.Close()

	return h.Record(history.Entry{
		WorkoutID: w.ID.String(),
		BodyParts: req.BodyParts,
		Goal:      req.Goal,
		Exercises: len(w.Exercises),
	})
}

func listRecent(limit int) error {
	dir, err := historyDir()
	if err != nil {
		return err
	}
	h, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := h.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no local generations recorded")
		return nil
	}
	for _, e := range entries {
		goal := e.Goal
		if goal == "" {
			goal = "-"
		}
		fmt.Printf("%s  %-30s  %-20s  %d exercises\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(e.BodyParts, ","), goal, e.Exercises)
	}
	return nil
}

func historyDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pulselift-gen"), nil
}

// runAsk streams a one-off training question straight to the model,
// printing tokens as they arrive.
func runAsk(question string, log *slog.Logger) error {
	key := os.Getenv("PULSELIFT_ANTHROPIC_API_KEY")
	if key == "" {
		return fmt.Errorf("PULSELIFT_ANTHROPIC_API_KEY is required for -ask")
	}

	client := llm.NewClient(key, log)
	prompt := "You are a concise strength training assistant. " + question

	err := client.Stream(context.Background(), prompt, llm.Params{
		Model:       llm.ModelFast,
		MaxTokens:   500,
		Temperature: 0.7,
	}, func(delta string) {
		fmt.Print(delta)
	})
	fmt.Println()
	return err
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
