package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/hpn/hpn-codepilot/internal/security"
)

// Chat message types.
const (
	MessageUser  = "user"
	MessageAI    = "ai"
	MessageError = "error"
)

const (
	commandSend = "sendMessage"
	commandAdd  = "addMessage"
)

// ChatCommand is a message from the chat client.
type ChatCommand struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

// ChatMessage is a message pushed to the chat client.
type ChatMessage struct {
	Command string `json:"command"`
	ID      string `json:"id"`
	Type    string `json:"type"`
	Text    string `json:"text"`
}

type chatTimings struct {
	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

var defaultChatTimings = chatTimings{
	writeWait:  10 * time.Second,
	pongWait:   60 * time.Second,
	pingPeriod: 30 * time.Second,
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		// Without an allow list only same-host browsers may connect.
		u, err := url.Parse(origin)
		return len(allowed) == 0 && err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func newChatMessage(kind, text string) ChatMessage {
	return ChatMessage{Command: commandAdd, ID: uuid.NewString(), Type: kind, Text: text}
}

// HandleChat handles GET /v1/chat. Each sendMessage is echoed back as a user
// message, then answered with an ai or error message. Questions are answered
// one at a time in arrival order.
func (h *Handler) HandleChat(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("chat upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	sessionID := RequestID(c)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := h.logger.With(slog.String("session_id", sessionID))
	logger.Info("chat session opened")

	err = h.runChat(c.Request.Context(), conn, logger)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Warn("chat session ended", slog.String("error", err.Error()))
		return
	}
	logger.Info("chat session closed")
}

func (h *Handler) runChat(parent context.Context, conn *websocket.Conn, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	questions := make(chan string, 8)
	outbox := make(chan ChatMessage, 16)

	// reader
	g.Go(func() error {
		defer close(questions)
		defer cancel()

		_ = conn.SetReadDeadline(time.Now().Add(h.chat.pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(h.chat.pongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			var cmd ChatCommand
			if err := json.Unmarshal(data, &cmd); err != nil {
				logger.Debug("ignoring malformed chat frame", slog.String("error", err.Error()))
				continue
			}
			if cmd.Command != commandSend || strings.TrimSpace(cmd.Text) == "" {
				continue
			}
			select {
			case questions <- cmd.Text:
			case <-ctx.Done():
				return nil
			}
		}
	})

	// asker
	g.Go(func() error {
		defer close(outbox)
		for q := range questions {
			if !push(ctx, outbox, newChatMessage(MessageUser, q)) {
				return nil
			}
			reply := h.answer(ctx, q, logger)
			if !push(ctx, outbox, reply) {
				return nil
			}
		}
		return nil
	})

	// writer
	g.Go(func() error {
		ticker := time.NewTicker(h.chat.pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-outbox:
				if !ok {
					return nil
				}
				data, err := json.Marshal(msg)
				if err != nil {
					return err
				}
				_ = conn.SetWriteDeadline(time.Now().Add(h.chat.writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return err
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(h.chat.writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return err
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	// A failed write leaves the reader blocked; closing the socket releases it.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (h *Handler) answer(ctx context.Context, question string, logger *slog.Logger) ChatMessage {
	answer, err := h.assistant.AskQuestion(ctx, question)
	if err != nil {
		_, errType := classify(err)
		logger.Warn("chat question failed", slog.String("type", errType), slog.String("error", err.Error()))
		return newChatMessage(MessageError, "Error: "+security.Redact(err.Error()))
	}
	return newChatMessage(MessageAI, answer)
}

func push(ctx context.Context, outbox chan<- ChatMessage, msg ChatMessage) bool {
	select {
	case outbox <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
