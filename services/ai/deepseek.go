package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/insights"
)

const (
	suggestionsTool = "record_insights"

	systemPrompt = "You are a caring assistant for parents of children with special needs. " +
		"Given recent activity logs and routines, suggest concrete, gentle next steps. " +
		"Always answer by calling the " + suggestionsTool + " function."
)

type deepseekProvider struct {
	client deepseek.Client
	logger core.Logger
}

var _ insights.Provider = (*deepseekProvider)(nil)

// NewDeepseekProvider returns nil when no API key is configured so the
// insights service can run soft-disabled.
func NewDeepseekProvider(conf *core.Config, logger core.Logger) (insights.Provider, error) {
	if conf.DeepseekApiKey == "" {
		return nil, nil
	}
	client, err := deepseek.NewClient(conf.DeepseekApiKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating deepseek client")
	}
	return &deepseekProvider{client: client, logger: logger}, nil
}

func (p *deepseekProvider) Suggest(ctx context.Context, req insights.SuggestionRequest) (insights.Suggestions, error) {
	temp := float32(0.7)
	chatReq := &request.ChatCompletionsRequest{
		Model: "deepseek-chat",
		Messages: []*request.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: p.snapshotPrompt(req)},
		},
		MaxTokens:   1024,
		Temperature: &temp,
		Stream:      false,
		Tools:       &[]request.Tool{suggestionsToolSpec()},
	}

	resp, err := p.client.CallChatCompletionsChat(ctx, chatReq)
	if err != nil {
		return insights.Suggestions{}, errors.Wrap(err, "calling deepseek")
	}
	if len(resp.Choices) == 0 {
		return insights.Suggestions{}, errors.New("deepseek returned no choices")
	}

	msg := resp.Choices[0].Message
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != suggestionsTool {
			continue
		}
		var res insights.Suggestions
		if err = json.Unmarshal([]byte(tc.Function.Arguments), &res); err != nil {
			return insights.Suggestions{}, errors.Wrap(err, "decoding "+suggestionsTool+" arguments")
		}
		return res, nil
	}
	return insights.Suggestions{}, errors.Errorf("deepseek did not call %s (finish_reason=%s)", suggestionsTool, resp.Choices[0].FinishReason)
}

// snapshotPrompt flattens the activity snapshot into a compact text form;
// the raw structs are too noisy to hand to the model directly.
func (p *deepseekProvider) snapshotPrompt(req insights.SuggestionRequest) string {
	sb := new(strings.Builder)
	_, _ = fmt.Fprintf(sb, "Current time: %s\n\nRecent activity logs:\n", req.CurrentTime.Format(time.RFC1123))
	if len(req.Logs) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, l := range req.Logs {
		_, _ = fmt.Fprintf(sb, "- [%s] %s / %s", l.OccurredAt.Format("Mon 15:04"), l.ChildName, l.Category)
		if l.Mood != "" {
			_, _ = fmt.Fprintf(sb, " (mood: %s)", l.Mood)
		}
		if l.Notes != "" {
			_, _ = fmt.Fprintf(sb, ": %s", l.Notes)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nActive routines:\n")
	if len(req.Routines) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, r := range req.Routines {
		_, _ = fmt.Fprintf(sb, "- %s (%s): %s\n", r.Title, r.Schedule, strings.Join(r.Steps, ", "))
	}
	return sb.String()
}

func suggestionsToolSpec() request.Tool {
	return request.Tool{
		Type: "function",
		Function: &request.ToolFunction{
			Name:        suggestionsTool,
			Description: "Record structured suggestions for the family based on their activity.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"suggestions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Two to four concrete, actionable suggestions.",
					},
					"daily_tip": map[string]interface{}{
						"type":        "string",
						"description": "One short encouraging tip for today.",
					},
					"pattern_insight": map[string]interface{}{
						"type":        "string",
						"description": "A pattern noticed across the logs, if any.",
					},
				},
				"required": []string{"suggestions", "daily_tip", "pattern_insight"},
			},
		},
	}
}
