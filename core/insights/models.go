package insights

import (
	"time"

	"github.com/trezcool/malezi/core/activity"
)

type (
	// SuggestionRequest is the snapshot of family activity the assistant
	// reasons over.
	SuggestionRequest struct {
		Logs        []activity.Log     `json:"logs"`
		Routines    []activity.Routine `json:"routines"`
		CurrentTime time.Time          `json:"current_time"`
	}

	// Suggestions is the assistant's structured answer. The shape is fixed
	// by the completion provider's function-calling schema; partial answers
	// are never returned.
	Suggestions struct {
		Suggestions    []string `json:"suggestions"`
		DailyTip       string   `json:"daily_tip"`
		PatternInsight string   `json:"pattern_insight"`
		Disabled       bool     `json:"disabled,omitempty"`
	}
)
