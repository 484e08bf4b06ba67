package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/malezi/core/activity"
)

func Test_activityApi_logs(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Mama Nsimba", "mnsimba1", "mama@test.cd", nil, true)
	other := createUser(t, ta, "Other", "other001", "other@test.cd", nil, true)
	token := getToken(t, owner)
	now := time.Now().UTC()

	t.Run("create invalid mood", func(t *testing.T) {
		body := marchallObj(t, activity.NewLog{ChildName: "Eli", Category: activity.CategoryMeal, Mood: "grumpy", OccurredAt: now})
		req, rec := newAuthRequest(http.MethodPost, "/v1/logs", token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	var lg activity.Log
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, activity.NewLog{
			ChildName:  "Eli",
			Category:   activity.CategoryMeal,
			Mood:       activity.MoodHappy,
			Notes:      "finished his fufu",
			OccurredAt: now,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/logs", token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lg))
		assert.Equal(t, owner.ID, lg.OwnerID)
	})

	t.Run("logging counts as a completed action", func(t *testing.T) {
		stats, err := ta.gamifySvc.Stats(context.Background(), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.CompletedToday)
		assert.Equal(t, conf.Gamify.CompletionPoints, stats.Points)
	})

	t.Run("query with category filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/logs?category=meal", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var logs []activity.Log
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
		require.Len(t, logs, 1)
		assert.Equal(t, lg.ID, logs[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/v1/logs?category=sleep", token)
		ta.app.ServeHTTP(rec, req)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
		assert.Empty(t, logs)
	})

	t.Run("not visible to others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/logs/"+lg.ID, getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/logs/"+lg.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/logs/"+lg.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_activityApi_routines(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Mama Nsimba", "mnsimba1", "mama@test.cd", nil, true)
	other := createUser(t, ta, "Other", "other001", "other@test.cd", nil, true)
	token := getToken(t, owner)

	var rt activity.Routine
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, activity.NewRoutine{
			Title:    "Morning routine",
			Schedule: "weekdays 06:30",
			Steps:    []string{"wake up", "brush teeth", "breakfast"},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/routines", token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rt))
		assert.Equal(t, owner.ID, rt.OwnerID)
		assert.Len(t, rt.Steps, 3)
	})

	t.Run("update steps", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"steps": []string{"wake up", "breakfast"}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/routines/"+rt.ID, token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated activity.Routine
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Len(t, updated.Steps, 2)
		assert.Equal(t, rt.Title, updated.Title)
	})

	t.Run("deactivate", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"is_active": false})
		req, rec := newAuthRequest(http.MethodPut, "/v1/routines/"+rt.ID, token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated activity.Routine
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.NotNil(t, updated.IsActive)
		assert.False(t, *updated.IsActive)
	})

	t.Run("not visible to others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/routines/"+rt.ID, getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("query own only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/routines", getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/routines/"+rt.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})
}
