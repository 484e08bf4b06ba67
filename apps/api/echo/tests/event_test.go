package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/user"
)

func Test_eventApi_crud(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Owner", "owner001", "owner@test.cd", nil, true)
	other := createUser(t, ta, "Other", "other001", "other@test.cd", nil, true)
	admin := createUser(t, ta, "Admin", "admin001", "admin@test.cd", []string{user.RoleAdmin}, true)
	token := getToken(t, owner)

	start := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)

	t.Run("create requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/events", marchallObj(t, event.NewEvent{}))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	})

	t.Run("create invalid category", func(t *testing.T) {
		body := marchallObj(t, event.NewEvent{Title: "Kiné", Category: "party", StartTime: start})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events", token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "invalid event category")
	})

	var evt event.Event
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, event.NewEvent{
			Title:        "Kiné w/ Dr Kanza",
			Category:     event.CategoryTherapy,
			StartTime:    start,
			RemindBefore: 15,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/events", token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evt))
		assert.Equal(t, owner.ID, evt.OwnerID)
		assert.False(t, evt.Completed)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("not visible to others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID, getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("visible to admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID, getToken(t, admin))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"title": "Kiné (moved)"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/events/"+evt.ID, token, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated event.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Kiné (moved)", updated.Title)
		assert.Equal(t, event.CategoryTherapy, updated.Category) // untouched
	})

	t.Run("query own only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/events", getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/"+evt.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID, token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func Test_eventApi_complete(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Owner", "owner001", "owner@test.cd", nil, true)
	token := getToken(t, owner)

	evt, err := ta.evtSvc.Create(context.Background(), owner.ID, event.NewEvent{
		Title:     "Give meds",
		Category:  event.CategoryMedication,
		StartTime: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodPut, "/v1/events/"+evt.ID+"/complete", token)
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var completed event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	assert.True(t, completed.Completed)

	// completion feeds the daily goal
	stats, err := ta.gamifySvc.Stats(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, conf.Gamify.CompletionPoints, stats.Points)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 1, stats.Streak)
}

func Test_eventApi_checkReminders(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Owner", "owner001", "owner@test.cd", nil, true)
	now := time.Now().UTC()

	mkEvent := func(title string, start time.Time, completed bool) event.Event {
		evt, err := ta.evtSvc.Create(context.Background(), owner.ID, event.NewEvent{
			Title:        title,
			Category:     event.CategoryAppointment,
			StartTime:    start,
			RemindBefore: 15,
		})
		require.NoError(t, err)
		if completed {
			evt, err = ta.evtSvc.Complete(context.Background(), evt.ID)
			require.NoError(t, err)
		}
		return evt
	}

	due := mkEvent("Speech therapy", now.Add(10*time.Minute), false)
	mkEvent("Far away", now.Add(2*time.Hour), false)            // outside the check window
	mkEvent("Done already", now.Add(10*time.Minute), true)      // completed events never fire
	mkEvent("Already started", now.Add(-10*time.Minute), false) // never fire late

	req, rec := newAuthRequest(http.MethodPost, "/v1/reminders/check", getToken(t, owner))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var firings []event.Firing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &firings))
	require.Len(t, firings, 1)
	assert.Equal(t, due.ID, firings[0].EventID)
	assert.Equal(t, event.FiringTag(due.ID, due.StartTime), firings[0].Tag)
	assert.InDelta(t, 10, firings[0].MinutesUntil, 1)
}

func Test_eventApi_dailyAgenda(t *testing.T) {
	ta := newTestApp(t)
	owner := createUser(t, ta, "Owner", "owner001", "owner@test.cd", nil, true)
	now := time.Now().UTC()

	today, err := ta.evtSvc.Create(context.Background(), owner.ID, event.NewEvent{
		Title:     "Today",
		Category:  event.CategoryOther,
		StartTime: now.Add(time.Minute),
	})
	require.NoError(t, err)
	_, err = ta.evtSvc.Create(context.Background(), owner.ID, event.NewEvent{
		Title:     "Tomorrow",
		Category:  event.CategoryOther,
		StartTime: now.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/reminders/daily", getToken(t, owner))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var agenda []event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agenda))
	require.Len(t, agenda, 1)
	assert.Equal(t, today.ID, agenda[0].ID)
}
