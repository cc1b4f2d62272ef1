package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/pulselift/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.GetExercises(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) bodyParts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	vocab := make([]map[string]string, 0, len(models.AllBodyParts))
	for _, p := range models.AllBodyParts {
		vocab = append(vocab, map[string]string{
			"key":     string(p),
			"display": p.DisplayName(),
		})
	}

	data, err := json.Marshal(vocab)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
