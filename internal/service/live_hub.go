package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"training_portal/internal/apiclient"
	"training_portal/internal/config"
	"training_portal/internal/model"
	"training_portal/internal/poller"
	"training_portal/pkg/logger"
	"training_portal/pkg/monitoring"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// Live message types.
const (
	MsgLeaderboard     = "leaderboard"
	MsgNotifications   = "notifications"
	MsgProjectProgress = "project_progress"
	MsgError           = "error"
	MsgRefresh         = "refresh"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// LiveError is pushed when a poll fails; the view keeps its last good state.
type LiveError struct {
	View    string `json:"view"`
	Message string `json:"message"`
}

// LiveView is one mounted view: a websocket plus the pollers that feed it.
// The pollers live exactly as long as the connection.
type LiveView struct {
	hub     *LiveHub
	conn    *websocket.Conn
	send    chan []byte
	session *model.Session
	api     *apiclient.Client
	limiter *rate.Limiter
	cancel  context.CancelFunc

	leaderboard   *poller.Poller
	notifications *poller.Poller

	mu   sync.Mutex
	feed *model.NotificationFeed
}

type LiveHub struct {
	mu                 sync.RWMutex
	views              map[string]map[*LiveView]struct{}
	leaderboardEvery   time.Duration
	notificationsEvery time.Duration
	origins            []string
	upgrader           websocket.Upgrader
}

func NewLiveHub(cfg config.PollingConfig) *LiveHub {
	h := &LiveHub{
		views:              make(map[string]map[*LiveView]struct{}),
		leaderboardEvery:   cfg.Leaderboard,
		notificationsEvery: cfg.Notifications,
	}
	if h.leaderboardEvery <= 0 {
		h.leaderboardEvery = config.DefaultLeaderboardInterval
	}
	if h.notificationsEvery <= 0 {
		h.notificationsEvery = config.DefaultNotificationInterval
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetAllowedOrigins replaces the origins allowed to open a live view besides
// the portal's own host.
func (h *LiveHub) SetAllowedOrigins(origins []string) {
	list := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			list = append(list, o)
		}
	}
	h.mu.Lock()
	h.origins = list
	h.mu.Unlock()
}

// checkOrigin admits requests without an Origin header, same-host pages and
// the configured CORS origins.
func (h *LiveHub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, allowed := range h.origins {
		if strings.EqualFold(allowed, strings.TrimRight(origin, "/")) {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and blocks until the connection ends. The
// leaderboard is polled for every role, notifications for students only.
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request, session *model.Session, api *apiclient.Client) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &LiveView{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		session: session,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		cancel:  cancel,
	}

	h.mu.RLock()
	lbEvery, nfEvery := h.leaderboardEvery, h.notificationsEvery
	h.mu.RUnlock()

	v.leaderboard = poller.New(MsgLeaderboard, lbEvery, v.pollLeaderboard)
	if session.User.Role == model.Student {
		v.notifications = poller.New(MsgNotifications, nfEvery, v.pollNotifications)
	}

	h.register(v)
	monitoring.LiveViews.Inc()
	logger.Log.Debug("Live view opened", zap.Int("userId", session.User.ID))

	writerDone := make(chan struct{})
	go func() {
		v.writePump(ctx)
		close(writerDone)
	}()

	v.leaderboard.Start(ctx)
	if v.notifications != nil {
		v.notifications.Start(ctx)
	}

	v.readPump()

	cancel()
	v.leaderboard.Stop()
	if v.notifications != nil {
		v.notifications.Stop()
	}
	<-writerDone
	h.unregister(v)
	monitoring.LiveViews.Dec()
	logger.Log.Debug("Live view closed", zap.Int("userId", session.User.ID))
}

func (h *LiveHub) register(v *LiveView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.views[v.session.ID]
	if !ok {
		set = make(map[*LiveView]struct{})
		h.views[v.session.ID] = set
	}
	set[v] = struct{}{}
}

func (h *LiveHub) unregister(v *LiveView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.views[v.session.ID]
	delete(set, v)
	if len(set) == 0 {
		delete(h.views, v.session.ID)
	}
}

func (h *LiveHub) sessionViews(sessionID string) []*LiveView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*LiveView, 0, len(h.views[sessionID]))
	for v := range h.views[sessionID] {
		out = append(out, v)
	}
	return out
}

func (h *LiveHub) allViews() []*LiveView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*LiveView
	for _, set := range h.views {
		for v := range set {
			out = append(out, v)
		}
	}
	return out
}

// Count returns the number of open live views.
func (h *LiveHub) Count() int {
	return len(h.allViews())
}

func (h *LiveHub) PushToSession(sessionID string, msg WSMessage) {
	for _, v := range h.sessionViews(sessionID) {
		v.push(msg)
	}
}

// RefreshLeaderboard asks the session's leaderboard pollers for an immediate fetch.
func (h *LiveHub) RefreshLeaderboard(sessionID string) {
	for _, v := range h.sessionViews(sessionID) {
		v.leaderboard.Trigger()
	}
}

// UpdateNotifications applies fn to the feed held by each of the session's
// live views and pushes the result. ok is false when no view holds a feed.
func (h *LiveHub) UpdateNotifications(sessionID string, fn func(*model.NotificationFeed)) (*model.NotificationFeed, bool) {
	var last *model.NotificationFeed
	for _, v := range h.sessionViews(sessionID) {
		v.mu.Lock()
		if v.feed == nil {
			v.mu.Unlock()
			continue
		}
		fn(v.feed)
		snapshot := v.feed.Clone()
		v.mu.Unlock()

		v.push(WSMessage{Type: MsgNotifications, Data: snapshot})
		last = &snapshot
	}
	return last, last != nil
}

// SetIntervals changes the polling periods for open and future views.
func (h *LiveHub) SetIntervals(leaderboard, notifications time.Duration) {
	h.mu.Lock()
	if leaderboard > 0 {
		h.leaderboardEvery = leaderboard
	}
	if notifications > 0 {
		h.notificationsEvery = notifications
	}
	h.mu.Unlock()

	for _, v := range h.allViews() {
		v.leaderboard.SetInterval(leaderboard)
		if v.notifications != nil {
			v.notifications.SetInterval(notifications)
		}
	}
}

// Shutdown closes every live view.
func (h *LiveHub) Shutdown() {
	for _, v := range h.allViews() {
		v.cancel()
	}
}

func (v *LiveView) push(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to encode live message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case v.send <- data:
	default:
		logger.Log.Warn("Live view send buffer full, dropping message",
			zap.String("type", msg.Type), zap.Int("userId", v.session.User.ID))
	}
}

func (v *LiveView) pollLeaderboard(ctx context.Context) error {
	lb, err := v.api.Leaderboard(ctx)
	if err != nil {
		if ctx.Err() == nil {
			v.push(WSMessage{Type: MsgError, Data: LiveError{
				View:    MsgLeaderboard,
				Message: apiclient.Describe(err, "Network error while loading the leaderboard.", "Could not load the leaderboard."),
			}})
		}
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	v.push(WSMessage{Type: MsgLeaderboard, Data: lb})
	return nil
}

func (v *LiveView) pollNotifications(ctx context.Context) error {
	feed, err := loadNotificationFeed(ctx, v.api)
	if err != nil {
		if ctx.Err() == nil {
			v.push(WSMessage{Type: MsgError, Data: LiveError{
				View:    MsgNotifications,
				Message: apiclient.Describe(err, "Network error while loading notifications.", "Could not load notifications."),
			}})
		}
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	v.mu.Lock()
	v.feed = feed
	snapshot := feed.Clone()
	v.mu.Unlock()

	v.push(WSMessage{Type: MsgNotifications, Data: snapshot})
	return nil
}

type inboundMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

func (v *LiveView) readPump() {
	defer v.conn.Close()
	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error { v.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err), zap.Int("userId", v.session.User.ID))
			}
			return
		}
		if !v.limiter.Allow() {
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type != MsgRefresh {
			continue
		}
		switch msg.Data {
		case MsgLeaderboard:
			v.leaderboard.Trigger()
		case MsgNotifications:
			if v.notifications != nil {
				v.notifications.Trigger()
			}
		}
	}
}

func (v *LiveView) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				v.cancel()
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				v.cancel()
				return
			}
		}
	}
}
