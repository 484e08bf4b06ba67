package insights

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/activity"
)

type fakeProvider struct {
	res Suggestions
	err error
}

func (p fakeProvider) Suggest(context.Context, SuggestionRequest) (Suggestions, error) {
	return p.res, p.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestServiceSuggest(t *testing.T) {
	want := Suggestions{
		Suggestions:    []string{"Try a calming activity before bed"},
		DailyTip:       "Keep meal times consistent",
		PatternInsight: "Sleep logs cluster after therapy days",
	}
	svc := NewService(fakeProvider{res: want}, nopLogger{})

	req := SuggestionRequest{
		Logs:        []activity.Log{{ID: "log1", Category: activity.CategorySleep}},
		CurrentTime: time.Now().UTC(),
	}
	got, err := svc.Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if got.DailyTip != want.DailyTip || len(got.Suggestions) != 1 {
		t.Errorf("Suggest() = %+v, want %+v", got, want)
	}
}

// No provider configured: the feature reports itself disabled, never errors.
func TestServiceSuggestDisabled(t *testing.T) {
	svc := NewService(nil, nopLogger{})
	if svc.Enabled() {
		t.Fatal("Enabled() = true with nil provider")
	}
	got, err := svc.Suggest(context.Background(), SuggestionRequest{})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if !got.Disabled {
		t.Error("Disabled = false, want true")
	}
}

// Provider failures collapse to one generic error; no partial results leak.
func TestServiceSuggestProviderError(t *testing.T) {
	svc := NewService(fakeProvider{
		res: Suggestions{DailyTip: "partial"},
		err: errors.New("upstream timeout"),
	}, nopLogger{})

	got, err := svc.Suggest(context.Background(), SuggestionRequest{})
	if err != ErrBadCompletion {
		t.Fatalf("Suggest() error = %v, want ErrBadCompletion", err)
	}
	if got.DailyTip != "" {
		t.Errorf("partial result returned: %+v", got)
	}
}
