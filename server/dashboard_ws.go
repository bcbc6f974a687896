package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"crateaudit/core/analytics"
	"crateaudit/core/library"
	"crateaudit/logger"
	"crateaudit/model"

	"github.com/gorilla/websocket"
)

// Dashboard message types
const (
	MsgTypeLoad   = "load"   // 加载曲库，library_id 为空时加载最近一次
	MsgTypeSelect = "select" // 切换歌单
	MsgTypeReset  = "reset"  // 卸载曲库
	MsgTypePing   = "ping"
	MsgTypePong   = "pong"
	MsgTypeView   = "view"
	MsgTypeError  = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// DashboardMessage is a client request on the dashboard socket.
type DashboardMessage struct {
	Type      string `json:"type"`
	LibraryID string `json:"library_id,omitempty"`
	Playlist  string `json:"playlist,omitempty"`
}

// DashboardEvent is pushed to the client after every state change.
type DashboardEvent struct {
	Type       string          `json:"type"`
	Loaded     bool            `json:"loaded"`
	View       *analytics.View `json:"view,omitempty"`
	Error      string          `json:"error,omitempty"`
	Suggestion string          `json:"suggestion,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dashboardSession is one websocket connection with its own dashboard state.
type dashboardSession struct {
	conn      *websocket.Conn
	send      chan []byte
	userID    int64
	dash      *analytics.Dashboard
	libraries *library.Service
}

// DashboardWebSocketHandler upgrades /ws/dashboard?token=. Browsers cannot
// set headers on websocket requests, so the token travels in the query.
func (h *APIHandler) DashboardWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	s := &dashboardSession{
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		userID:    claims.UserID,
		dash:      analytics.NewDashboard(h.libraries.Aggregator()),
		libraries: h.libraries,
	}
	logger.Info("dashboard connected", logger.Int64("user", s.userID))

	go s.writePump()
	s.push(s.event())
	s.readPump(withClaims(r.Context(), claims))
	logger.Info("dashboard disconnected", logger.Int64("user", s.userID))
}

func (s *dashboardSession) readPump(ctx context.Context) {
	defer func() {
		close(s.send)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", logger.ErrorField(err), logger.Int64("user", s.userID))
			}
			return
		}

		var msg DashboardMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.push(errorEvent("invalid message format", ""))
			continue
		}
		s.push(s.handle(ctx, &msg))
	}
}

func (s *dashboardSession) handle(ctx context.Context, msg *DashboardMessage) *DashboardEvent {
	switch msg.Type {
	case MsgTypePing:
		return &DashboardEvent{Type: MsgTypePong, Loaded: s.dash.Loaded()}

	case MsgTypeLoad:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		var (
			lib *model.Library
			err error
		)
		if msg.LibraryID == "" {
			lib, err = s.libraries.Latest(ctx, s.userID)
		} else {
			lib, err = s.libraries.Get(ctx, s.userID, msg.LibraryID)
		}
		if err != nil {
			if library.IsNotFound(err) {
				return errorEvent("library not found", "")
			}
			logger.Error("dashboard load failed", logger.Int64("user", s.userID), logger.ErrorField(err))
			return errorEvent("failed to load library", "")
		}
		s.dash.Load(lib.ID, lib.Baseline.AnalysisResult)

	case MsgTypeSelect:
		if err := s.dash.Select(msg.Playlist); err != nil {
			switch {
			case errors.Is(err, analytics.ErrUnknownPlaylist):
				return errorEvent(err.Error(), library.Suggest(msg.Playlist, s.dash.Playlists()))
			default:
				return errorEvent(err.Error(), "")
			}
		}

	case MsgTypeReset:
		s.dash.Reset()

	default:
		return errorEvent("unknown message type: "+msg.Type, "")
	}
	return s.event()
}

// event 返回当前看板状态
func (s *dashboardSession) event() *DashboardEvent {
	view, err := s.dash.View()
	if err != nil {
		return &DashboardEvent{Type: MsgTypeView, Loaded: false}
	}
	return &DashboardEvent{Type: MsgTypeView, Loaded: true, View: &view}
}

func errorEvent(msg, suggestion string) *DashboardEvent {
	return &DashboardEvent{Type: MsgTypeError, Error: msg, Suggestion: suggestion}
}

func (s *dashboardSession) push(ev *DashboardEvent) {
	ev.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("failed to marshal dashboard event", logger.ErrorField(err))
		return
	}
	select {
	case s.send <- data:
	default:
		logger.Warn("dashboard send buffer full, dropping event", logger.Int64("user", s.userID))
	}
}

func (s *dashboardSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
