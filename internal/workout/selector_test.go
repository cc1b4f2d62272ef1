package workout

import (
	"fmt"
	"testing"

	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

func catalogExercise(name string, parts []models.BodyPart, videoAuthors ...uuid.UUID) models.Exercise {
	ex := models.Exercise{
		ID:               uuid.New(),
		Name:             name,
		PrimaryBodyParts: parts,
		Sets:             3,
		Reps:             12,
	}
	for _, a := range videoAuthors {
		ex.Videos = append(ex.Videos, models.Video{ID: uuid.New(), URL: "https://cdn.example/" + name, AuthorID: a})
	}
	return ex
}

func TestSelectCandidatesFiltersByBodyPart(t *testing.T) {
	catalog := []models.Exercise{
		catalogExercise("Barbell Curl", []models.BodyPart{models.Biceps}),
		catalogExercise("Squat", []models.BodyPart{models.Quads, models.Glutes}),
		catalogExercise("Hammer Curl", []models.BodyPart{models.Biceps, models.Forearms}),
	}

	names := SelectCandidates(catalog, SelectionInput{Targets: []models.BodyPart{models.Biceps}})
	if len(names) != 2 {
		t.Fatalf("candidates = %v, want 2", names)
	}
	if names[0] != "Barbell Curl" || names[1] != "Hammer Curl" {
		t.Errorf("candidates = %v, want catalog order preserved", names)
	}
}

func TestSelectCandidatesRequireVideo(t *testing.T) {
	author := uuid.New()
	catalog := []models.Exercise{
		catalogExercise("Barbell Curl", []models.BodyPart{models.Biceps}),
		catalogExercise("Hammer Curl", []models.BodyPart{models.Biceps}, author),
	}

	names := SelectCandidates(catalog, SelectionInput{
		Targets:      []models.BodyPart{models.Biceps},
		RequireVideo: true,
	})
	if len(names) != 1 || names[0] != "Hammer Curl" {
		t.Errorf("candidates = %v, want [Hammer Curl]", names)
	}
}

func TestSelectCandidatesDeduplicatesNames(t *testing.T) {
	catalog := []models.Exercise{
		catalogExercise("Barbell Curl", []models.BodyPart{models.Biceps}),
		catalogExercise("Barbell Curl", []models.BodyPart{models.Forearms, models.Biceps}),
	}

	names := SelectCandidates(catalog, SelectionInput{Targets: []models.BodyPart{models.Biceps}})
	if len(names) != 1 {
		t.Errorf("candidates = %v, want 1 distinct name", names)
	}
}

// A prioritized subset below the viability threshold degrades to the full
// filtered set; at or above the threshold only the subset is used.
func TestSelectCandidatesPrioritizedAuthorThreshold(t *testing.T) {
	coach := uuid.New()
	other := uuid.New()

	build := func(prioritizedCount int) []models.Exercise {
		var catalog []models.Exercise
		for i := 0; i < prioritizedCount; i++ {
			catalog = append(catalog, catalogExercise(fmt.Sprintf("Coach Move %d", i), []models.BodyPart{models.Chest}, coach))
		}
		for i := 0; i < 10; i++ {
			catalog = append(catalog, catalogExercise(fmt.Sprintf("Other Move %d", i), []models.BodyPart{models.Chest}, other))
		}
		return catalog
	}

	in := SelectionInput{
		Targets:            []models.BodyPart{models.Chest},
		PrioritizedAuthors: []uuid.UUID{coach},
		RequireVideo:       true,
	}

	// 5 prioritized exercises: below the threshold, fall back to all 15.
	names := SelectCandidates(build(5), in)
	if len(names) != 15 {
		t.Errorf("below threshold: candidates = %d, want 15 (full filtered set)", len(names))
	}

	// 6 prioritized exercises: at the threshold, the subset stands alone.
	names = SelectCandidates(build(6), in)
	if len(names) != 6 {
		t.Errorf("at threshold: candidates = %d, want 6 (prioritized only)", len(names))
	}
	for _, n := range names {
		if n[:5] != "Coach" {
			t.Errorf("candidate %q is not from the prioritized author", n)
		}
	}
}

func TestSelectCandidatesNoPrioritizedAuthors(t *testing.T) {
	author := uuid.New()
	catalog := []models.Exercise{
		catalogExercise("Push Up", []models.BodyPart{models.Chest}, author),
	}

	names := SelectCandidates(catalog, SelectionInput{Targets: []models.BodyPart{models.Chest}})
	if len(names) != 1 || names[0] != "Push Up" {
		t.Errorf("candidates = %v, want [Push Up]", names)
	}
}

func TestSelectCandidatesBackExpansionMatchesConstituents(t *testing.T) {
	catalog := []models.Exercise{
		catalogExercise("Lat Pulldown", []models.BodyPart{models.Lats}),
		catalogExercise("Shrug", []models.BodyPart{models.Traps}),
		catalogExercise("Face Pull", []models.BodyPart{models.Rhomboids}),
		catalogExercise("Crunch", []models.BodyPart{models.Abs}),
	}

	targets := models.NormalizeBodyParts([]string{"back"})
	names := SelectCandidates(catalog, SelectionInput{Targets: targets})
	if len(names) != 3 {
		t.Errorf("candidates = %v, want the three back-constituent exercises", names)
	}
}
