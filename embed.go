package pulselift

import _ "embed"

// DefaultWorkoutTemplate is the built-in workout prompt, used whenever
// no template row exists in the database.
//
//go:embed prompts/workout.tmpl
var DefaultWorkoutTemplate string
