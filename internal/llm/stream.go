package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// streamEvent is the subset of SSE event payloads that carry text.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	ContentBlock struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content_block"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Stream sends a prompt in streaming mode and invokes onDelta once per
// received text delta, in receipt order. The return is the terminal
// signal and happens exactly once; after the caller's context is
// cancelled no further deltas are delivered.
func (c *Client) Stream(ctx context.Context, prompt string, p Params, onDelta func(text string)) error {
	body, err := json.Marshal(messagesRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: p.Temperature,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := c.send(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw := make([]byte, 0, 512)
		buf := bufio.NewReader(resp.Body)
		if line, err := buf.ReadBytes('\n'); err == nil || len(line) > 0 {
			raw = line
		}
		return providerErrorFromBody(resp.StatusCode, raw)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return &MalformedResponseError{Reason: "stream event is not valid JSON"}
		}

		switch ev.Type {
		case "content_block_start":
			if ev.ContentBlock.Type == "text" && ev.ContentBlock.Text != "" {
				onDelta(ev.ContentBlock.Text)
			}
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				onDelta(ev.Delta.Text)
			}
		case "message_stop":
			return nil
		case "error":
			if ev.Error != nil {
				return &ProviderError{StatusCode: resp.StatusCode, Type: ev.Error.Type, Message: ev.Error.Message}
			}
			return &MalformedResponseError{Reason: "error event without payload"}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Err: err}
	}
	return &MalformedResponseError{Reason: "stream ended without message_stop"}
}
