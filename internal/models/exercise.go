package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is one demonstration video attached to an exercise.
type Video struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	AuthorID uuid.UUID `json:"authorId"`
}

// Exercise is a catalog entity. The catalog service owns it; the pipeline
// only reads. Name is the unique key used to match model output back to
// the catalog.
type Exercise struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Category           string     `json:"category"`
	PrimaryBodyParts   []BodyPart `json:"primaryBodyParts"`
	SecondaryBodyParts []BodyPart `json:"secondaryBodyParts"`
	Tags               []string   `json:"tags"`
	Description        string     `json:"description,omitempty"`
	Steps              []string   `json:"steps,omitempty"`
	Videos             []Video    `json:"videos"`
	Sets               int        `json:"sets"`
	Reps               int        `json:"reps"`
	Weight             float64    `json:"weight"`
	IsBodyWeight       bool       `json:"isBodyWeight"`
	Author             string     `json:"author"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// HasVideo reports whether the exercise has at least one playable video.
func (e Exercise) HasVideo() bool {
	return len(e.Videos) > 0
}

// TargetsAny reports whether any of the exercise's primary body parts is
// in the target set.
func (e Exercise) TargetsAny(targets []BodyPart) bool {
	for _, p := range e.PrimaryBodyParts {
		for _, t := range targets {
			if p == t {
				return true
			}
		}
	}
	return false
}

// ExerciseReference pairs a catalog exercise with the superset group it
// belongs to inside a workout. Group ids follow model output ordering:
// one output row is one group.
type ExerciseReference struct {
	Exercise Exercise `json:"exercise"`
	GroupID  int      `json:"groupId"`
}

// ExerciseDetail is a transient reconciliation record. It exists only
// between parsing and log synthesis and is discarded afterwards.
type ExerciseDetail struct {
	Name         string
	Matched      *Exercise
	Sets         int
	Reps         int
	Weight       float64
	Notes        string
	IsSplit      bool
	IsMissing    bool
	GroupID      int
	ClosestMatch []Exercise
}
