package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WorkoutTemplateName is the row the generation pipeline reads its prompt
// template from.
const WorkoutTemplateName = "workout"

// GetPromptTemplate returns the stored template with the given name.
// Returns ErrNotFound when no row exists; callers fall back to the
// embedded default template in that case.
func (db *DB) GetPromptTemplate(ctx context.Context, name string) (string, error) {
	var content string
	err := db.Pool.QueryRow(ctx,
		`SELECT content FROM prompt_templates WHERE name = $1`, name).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetching prompt template %q: %w", name, err)
	}
	return content, nil
}

// UpsertPromptTemplate stores or replaces a template. Template content is
// remotely configurable: changing it requires no redeploy.
func (db *DB) UpsertPromptTemplate(ctx context.Context, name, content string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO prompt_templates (name, content, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		name, content)
	if err != nil {
		return fmt.Errorf("upserting prompt template %q: %w", name, err)
	}
	return nil
}
