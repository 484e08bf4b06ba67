package insights

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

var ErrBadCompletion = errors.New("could not generate suggestions")

// Provider turns an activity snapshot into structured suggestions.
// Implementations live in services/ai.
type Provider interface {
	Suggest(ctx context.Context, req SuggestionRequest) (Suggestions, error)
}

type Service struct {
	provider Provider
	logger   core.Logger
}

// NewService returns an insights service. provider may be nil when no API key
// is configured; the feature then reports itself disabled instead of failing.
func NewService(provider Provider, logger core.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

func (svc *Service) Enabled() bool { return svc.provider != nil }

func (svc *Service) Suggest(ctx context.Context, req SuggestionRequest) (Suggestions, error) {
	if svc.provider == nil {
		return Suggestions{Disabled: true, DailyTip: "AI suggestions are not available right now."}, nil
	}
	res, err := svc.provider.Suggest(ctx, req)
	if err != nil {
		svc.logger.Error("generating suggestions", err)
		return Suggestions{}, ErrBadCompletion
	}
	return res, nil
}
