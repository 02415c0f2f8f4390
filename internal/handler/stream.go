package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"jobboard_chat/internal/metrics"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/service"
	"jobboard_chat/pkg/logger"
)

// StreamHandler отдает живые подписки по WebSocket: снапшот сразу и новый снапшот после каждого изменения
type StreamHandler struct {
	conversations service.ConversationService
	upgrader      websocket.Upgrader
	sendBuffer    int
	pingPeriod    time.Duration
	log           logger.Logger
}

func NewStreamHandler(conversations service.ConversationService, allowedOrigins []string, sendBuffer int, pingPeriod time.Duration, log logger.Logger) *StreamHandler {
	return &StreamHandler{
		conversations: conversations,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		sendBuffer: sendBuffer,
		pingPeriod: pingPeriod,
		log:        log,
	}
}

// Conversation - поток сообщений и сводки одной беседы
func (h *StreamHandler) Conversation(c *gin.Context) {
	key, _, ok := conversationAccess(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Подписки до upgrade, чтобы ошибку можно было вернуть обычным HTTP ответом
	messages, err := h.conversations.SubscribeMessages(ctx, key)
	if err != nil {
		respondError(c, h.log, "Failed to subscribe to messages", err)
		return
	}
	defer messages.Close()

	summary, err := h.conversations.SubscribeSummary(ctx, key)
	if err != nil {
		respondError(c, h.log, "Failed to subscribe to summary", err)
		return
	}
	defer summary.Close()

	conn, ok := h.upgrade(c)
	if !ok {
		return
	}
	defer conn.Close(websocket.CloseNormalClosure, "")

	metrics.ActiveStreams.WithLabelValues("conversation").Inc()
	defer metrics.ActiveStreams.WithLabelValues("conversation").Dec()

	log := h.log.With("conversation_key", key.String(), "connection_id", conn.ID)
	log.Debug("Conversation stream opened")

	messageUpdates := messages.Updates()
	summaryUpdates := summary.Updates()
	for messageUpdates != nil || summaryUpdates != nil {
		select {
		case <-conn.Done():
			log.Debug("Conversation stream closed by client")
			return
		case list, ok := <-messageUpdates:
			if !ok {
				messageUpdates = nil
				continue
			}
			if err := conn.SendFrame(realtime.FrameMessages, list); err != nil {
				log.Warn("Failed to send messages frame", "error", err)
				return
			}
		case s, ok := <-summaryUpdates:
			if !ok {
				summaryUpdates = nil
				continue
			}
			if err := conn.SendFrame(realtime.FrameSummary, s); err != nil {
				log.Warn("Failed to send summary frame", "error", err)
				return
			}
		}
	}
}

// Conversations - живой список бесед работодателя
func (h *StreamHandler) Conversations(c *gin.Context) {
	employerID, ok := employerAccess(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.conversations.SubscribeConversations(ctx, employerID)
	if err != nil {
		respondError(c, h.log, "Failed to subscribe to conversations", err)
		return
	}
	defer sub.Close()

	conn, ok := h.upgrade(c)
	if !ok {
		return
	}
	defer conn.Close(websocket.CloseNormalClosure, "")

	metrics.ActiveStreams.WithLabelValues("conversations").Inc()
	defer metrics.ActiveStreams.WithLabelValues("conversations").Dec()

	log := h.log.With("employer_id", employerID, "connection_id", conn.ID)
	log.Debug("Conversation list stream opened")

	for {
		select {
		case <-conn.Done():
			log.Debug("Conversation list stream closed by client")
			return
		case list, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := conn.SendFrame(realtime.FrameConversations, list); err != nil {
				log.Warn("Failed to send conversations frame", "error", err)
				return
			}
		}
	}
}

func (h *StreamHandler) upgrade(c *gin.Context) (*realtime.Connection, bool) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам пишет ответ с ошибкой
		h.log.Warn("Failed to upgrade connection", "error", err)
		return nil, false
	}

	conn := realtime.NewConnection(ws, h.sendBuffer, h.pingPeriod)
	conn.Start()
	return conn, true
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Не браузерные клиенты Origin не присылают
		return origin == "" || allowed[origin]
	}
}
