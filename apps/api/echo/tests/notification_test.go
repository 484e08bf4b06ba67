package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/malezi/apps/api/echo"
	"github.com/trezcool/malezi/core/notification"
)

func Test_notificationApi(t *testing.T) {
	ta := newTestApp(t)
	usr := createUser(t, ta, "Parent", "parent01", "parent@test.cd", nil, true)
	other := createUser(t, ta, "Other", "other001", "other@test.cd", nil, true)
	token := getToken(t, usr)

	ctx := context.Background()
	n1, err := ta.notifSvc.Push(ctx, usr.ID, "event-reminder:e1:20260830T1000", notification.KindReminder, "Kiné in 15 min", "")
	require.NoError(t, err)
	_, err = ta.notifSvc.Push(ctx, usr.ID, "chat:m1", notification.KindChat, "New message", "hello")
	require.NoError(t, err)
	_, err = ta.notifSvc.Push(ctx, other.ID, "chat:m2", notification.KindChat, "New message", "not yours")
	require.NoError(t, err)

	query := func() []notification.Notification {
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var notifs []notification.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		return notifs
	}
	unread := func() int {
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications/unread-count", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.UnreadCountResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Unread
	}

	t.Run("query own only", func(t *testing.T) {
		notifs := query()
		require.Len(t, notifs, 2)
		for _, n := range notifs {
			assert.Equal(t, usr.ID, n.UserID)
		}
	})

	t.Run("same tag upserts", func(t *testing.T) {
		dup, err := ta.notifSvc.Push(ctx, usr.ID, n1.Tag, notification.KindReminder, "Kiné in 14 min", "")
		require.NoError(t, err)
		assert.Equal(t, n1.ID, dup.ID)
		assert.Len(t, query(), 2)
	})

	t.Run("unread count", func(t *testing.T) {
		assert.Equal(t, 2, unread())
	})

	t.Run("mark read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/notifications/"+n1.ID+"/read", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Equal(t, 1, unread())
	})

	t.Run("cannot read someone else's", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/notifications/"+n1.ID+"/read", getToken(t, other))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("unknown id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/notifications/nope/read", token)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}
