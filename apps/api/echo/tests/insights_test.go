package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/malezi/core/insights"
)

type fakeProvider struct {
	res  insights.Suggestions
	err  error
	last insights.SuggestionRequest
}

func (p *fakeProvider) Suggest(_ context.Context, req insights.SuggestionRequest) (insights.Suggestions, error) {
	p.last = req
	return p.res, p.err
}

func Test_insightsApi_disabled(t *testing.T) {
	ta := newTestApp(t) // no provider configured
	usr := createUser(t, ta, "Parent", "parent01", "parent@test.cd", nil, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/insights/suggestions", getToken(t, usr))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res insights.Suggestions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Disabled)
	assert.NotEmpty(t, res.DailyTip)
}

func Test_insightsApi_suggest(t *testing.T) {
	provider := &fakeProvider{res: insights.Suggestions{
		Suggestions:    []string{"try an earlier bedtime"},
		DailyTip:       "celebrate small wins",
		PatternInsight: "meals go better after naps",
	}}
	ta := newTestApp(t, provider)
	usr := createUser(t, ta, "Parent", "parent01", "parent@test.cd", nil, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/insights/suggestions", getToken(t, usr))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res insights.Suggestions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Disabled)
	assert.Equal(t, provider.res.Suggestions, res.Suggestions)
	assert.False(t, provider.last.CurrentTime.IsZero())
}

func Test_insightsApi_providerFailure(t *testing.T) {
	ta := newTestApp(t, &fakeProvider{err: errors.New("rate limited")})
	usr := createUser(t, ta, "Parent", "parent01", "parent@test.cd", nil, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/insights/suggestions", getToken(t, usr))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
}
