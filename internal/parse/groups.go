package parse

import "strings"

// ExerciseGroups parses the bracketed group list a workout prompt asks the
// model to emit, e.g. "[[Squat, Lunge], [Plank]]". Each outer element is
// one superset group; position in the output is the group id.
//
// The grammar is fixed: strip the outermost bracket pair, split on the
// literal separator "], [", then split each group on ", ". This is not a
// JSON parser and deliberately does not recover from other shapes.
func ExerciseGroups(raw string) ([][]string, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[[") || !strings.HasSuffix(trimmed, "]]") {
		return nil, &MalformedResponseError{
			Reason: "expected a [[...], [...]] group list",
			Input:  raw,
		}
	}

	// Strip the outermost pair only; the inner brackets delimit groups.
	inner := trimmed[1 : len(trimmed)-1]

	groups := make([][]string, 0, 4)
	for _, part := range strings.Split(inner, "], [") {
		part = strings.TrimPrefix(part, "[")
		part = strings.TrimSuffix(part, "]")
		if strings.ContainsAny(part, "[]") {
			return nil, &MalformedResponseError{
				Reason: "nested or unbalanced brackets in group list",
				Input:  raw,
			}
		}

		names := strings.Split(part, ", ")
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return nil, &MalformedResponseError{
					Reason: "empty exercise name in group list",
					Input:  raw,
				}
			}
		}
		groups = append(groups, names)
	}
	return groups, nil
}
