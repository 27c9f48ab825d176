package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func liveURL(t *testing.T, hub *LiveHub, session *model.Session, api *apiclient.Client) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, session, api)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialLive(t *testing.T, hub *LiveHub, session *model.Session, api *apiclient.Client) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(liveURL(t, hub, session, api), nil)
	require.NoError(t, err)
	return conn
}

func TestLiveViewStopsPollingWhenClosed(t *testing.T) {
	var hits atomic.Int32
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/leaderboard", func(c *gin.Context) {
			hits.Add(1)
			c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": []gin.H{
				{"student_id": 4, "username": "ana", "total_points": 30, "rank": 1},
			}})
		})
	})
	hub := NewLiveHub(config.PollingConfig{Leaderboard: 20 * time.Millisecond, Notifications: time.Hour})
	session := &model.Session{ID: "mentor-1", User: model.User{ID: 9, Role: model.Mentor}}

	conn := dialLive(t, hub, session, api)
	var msg liveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgLeaderboard, msg.Type)

	var lb model.Leaderboard
	require.NoError(t, json.Unmarshal(msg.Data, &lb))
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, 30, lb.Entries[0].TotalPoints)

	assert.Eventually(t, func() bool { return hits.Load() >= 3 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	after := hits.Load()
	assert.Never(t, func() bool { return hits.Load() != after }, 150*time.Millisecond, 10*time.Millisecond)
}

func TestLiveViewPollsNotificationsForStudentsOnly(t *testing.T) {
	var notificationHits atomic.Int32
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/leaderboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": []gin.H{}})
		})
		r.GET("/api/notifications", func(c *gin.Context) {
			notificationHits.Add(1)
			c.JSON(http.StatusOK, gin.H{"success": true, "notifications": []gin.H{{"id": 1, "title": "Reviewed"}}})
		})
		r.GET("/api/notifications/unread-count", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "count": 1})
		})
	})
	hub := NewLiveHub(config.PollingConfig{Leaderboard: time.Hour, Notifications: time.Hour})

	student := &model.Session{ID: "student-1", User: model.User{ID: 2, Role: model.Student}}
	conn := dialLive(t, hub, student, api)
	defer conn.Close()

	seen := map[string]json.RawMessage{}
	for len(seen) < 2 {
		var msg liveMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg.Type] = msg.Data
	}
	var feed model.NotificationFeed
	require.NoError(t, json.Unmarshal(seen[MsgNotifications], &feed))
	assert.Equal(t, 1, feed.UnreadCount)

	updated, ok := hub.UpdateNotifications("student-1", func(f *model.NotificationFeed) { f.MarkRead(1) })
	require.True(t, ok)
	assert.Equal(t, 0, updated.UnreadCount)

	var msg liveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgNotifications, msg.Type)

	before := notificationHits.Load()
	mentor := &model.Session{ID: "mentor-2", User: model.User{ID: 3, Role: model.Mentor}}
	mconn := dialLive(t, hub, mentor, api)
	defer mconn.Close()
	require.NoError(t, mconn.ReadJSON(&msg))
	assert.Equal(t, MsgLeaderboard, msg.Type)
	assert.Equal(t, before, notificationHits.Load())

	_, ok = hub.UpdateNotifications("mentor-2", func(f *model.NotificationFeed) { f.MarkAllRead() })
	assert.False(t, ok)
}

func TestLiveViewReportsPollErrorsInline(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/leaderboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Leaderboard disabled"})
		})
	})
	hub := NewLiveHub(config.PollingConfig{Leaderboard: time.Hour})
	conn := dialLive(t, hub, &model.Session{ID: "m", User: model.User{ID: 1, Role: model.Manager}}, api)
	defer conn.Close()

	var msg liveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgError, msg.Type)
	var liveErr LiveError
	require.NoError(t, json.Unmarshal(msg.Data, &liveErr))
	assert.Equal(t, LiveError{View: MsgLeaderboard, Message: "Leaderboard disabled"}, liveErr)
}

func TestLiveViewRejectsUnknownOrigins(t *testing.T) {
	api := newFakeAPI(t, func(r *gin.Engine) {
		r.GET("/api/leaderboard", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": []gin.H{}})
		})
	})
	hub := NewLiveHub(config.PollingConfig{Leaderboard: time.Hour})
	hub.SetAllowedOrigins([]string{"https://portal.example.com/"})
	url := liveURL(t, hub, &model.Session{ID: "m", User: model.User{ID: 1, Role: model.Mentor}}, api)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.Count())

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://portal.example.com"}})
	require.NoError(t, err)
	conn.Close()

	hub.SetAllowedOrigins(nil)
	conn, _, err = websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://" + strings.TrimPrefix(url, "ws://")}})
	require.NoError(t, err, "same host is always allowed")
	conn.Close()
}
