package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/japanesestudent/learn-web/internal/middleware"
	"github.com/japanesestudent/learn-web/internal/models"
	"go.uber.org/zap"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 30 * time.Second
	pingInterval     = pongWait * 9 / 10
	subscriberBuffer = 16
)

// NoticeHandler handles notice HTTP requests
type NoticeHandler struct {
	BaseHandler
	upgrader websocket.Upgrader
}

// NewNoticeHandler creates a new notice handler. Websocket upgrades are accepted from the
// allowed CORS origins only.
func NewNoticeHandler(allowedOrigins []string, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{
		BaseHandler: BaseHandler{Logger: logger},
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 3 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(origin, allowedOrigins)
			},
		},
	}
}

// RegisterRoutes registers all notice handler routes
func (h *NoticeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/notices", func(r chi.Router) {
		r.Get("/", h.ListNotices)
		r.Get("/ws", h.StreamNotices)
	})
}

// ListNotices handles GET /api/v1/notices
// @Summary List notices
// @Description List the notices of the session with a sequence number greater than "after"
// @Tags notices
// @Produce json
// @Param after query int false "Last seen sequence number, default: 0"
// @Success 200 {array} models.Notice
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/notices [get]
func (h *NoticeHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	after, ok := h.afterParam(w, r)
	if !ok {
		return
	}

	h.RespondJSON(w, http.StatusOK, sess.Notices.Since(after))
}

// StreamNotices handles GET /api/v1/notices/ws
// @Summary Stream notices
// @Description Upgrade to a websocket that first replays the notices after "after", then pushes new ones as JSON messages
// @Tags notices
// @Param after query int false "Last seen sequence number, default: 0"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} handlers.ErrorResponse
// @Router /api/v1/notices/ws [get]
func (h *NoticeHandler) StreamNotices(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	after, ok := h.afterParam(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already wrote the error response
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	// subscribe before replaying so nothing pushed in between is lost
	live, cancel := sess.Notices.Subscribe(subscriberBuffer)
	defer cancel()

	done := make(chan struct{})
	go readPump(conn, done)

	h.writePump(conn, sess.Notices.Since(after), live, done)
}

// readPump consumes client frames so pongs and close frames are processed
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *NoticeHandler) writePump(conn *websocket.Conn, backlog []models.Notice, live <-chan models.Notice, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	var lastSeq int64
	send := func(n models.Notice) bool {
		if n.Seq <= lastSeq {
			return true
		}
		lastSeq = n.Seq
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(n); err != nil {
			h.Logger.Debug("failed to write notice", zap.Error(err))
			return false
		}
		return true
	}

	for _, n := range backlog {
		if !send(n) {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case n, ok := <-live:
			if !ok || !send(n) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *NoticeHandler) afterParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		return 0, true
	}
	after, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || after < 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid after parameter")
		return 0, false
	}
	return after, true
}
