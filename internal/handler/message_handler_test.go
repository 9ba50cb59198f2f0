package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/handler"
	"github.com/noah-isme/lumora-api/internal/service"
)

type stubInbox struct {
	mu          sync.Mutex
	messages    []dto.MessageResponse
	subscribers map[string]chan dto.MessageResponse
	subscribed  chan string
}

func newStubInbox() *stubInbox {
	return &stubInbox{
		subscribers: map[string]chan dto.MessageResponse{},
		subscribed:  make(chan string, 1),
	}
}

func (s *stubInbox) List(context.Context, string, int, int) ([]dto.MessageResponse, error) {
	return s.messages, nil
}

func (s *stubInbox) MarkRead(_ context.Context, id uint, userID string) (dto.MessageResponse, error) {
	for _, message := range s.messages {
		if message.ID == id && message.RecipientID == userID {
			message.Read = true
			return message, nil
		}
	}
	return dto.MessageResponse{}, service.ErrMessageNotFound
}

func (s *stubInbox) Subscribe(userID string) (<-chan dto.MessageResponse, func()) {
	ch := make(chan dto.MessageResponse, 4)
	s.mu.Lock()
	s.subscribers[userID] = ch
	s.mu.Unlock()
	s.subscribed <- userID
	return ch, func() {
		s.mu.Lock()
		delete(s.subscribers, userID)
		s.mu.Unlock()
	}
}

func (s *stubInbox) Deliver(_ context.Context, message dto.MessageResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[message.RecipientID]; ok {
		ch <- message
	}
}

func (s *stubInbox) Start(context.Context) {}

func TestMessageHandlerSendMessage(t *testing.T) {
	executor := &recordingExecutor{result: service.AdminActionResult{
		Resource: dto.MessageResponse{ID: 1, SenderID: "u2", RecipientID: "u1", Message: "hello"},
	}}
	app, group := newUserApp("/api/v1/messages", "u2")
	handler.NewMessageHandler(executor, newStubInbox(), newValidator(), zerolog.Nop()).Register(group)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/messages", map[string]string{
		"recipient_email": "u1@x.com",
		"message":         "hello",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, service.SendMessage{RecipientEmail: "u1@x.com", Body: "hello"}, executor.action)

	payload := decodeEnvelope(t, resp)
	var message dto.MessageResponse
	require.NoError(t, json.Unmarshal(payload.Data, &message))
	require.Equal(t, "u1", message.RecipientID)
}

func TestMessageHandlerRejectsEmptyMessage(t *testing.T) {
	executor := &recordingExecutor{}
	app, group := newUserApp("/api/v1/messages", "u2")
	handler.NewMessageHandler(executor, newStubInbox(), newValidator(), zerolog.Nop()).Register(group)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/messages", map[string]string{
		"recipient_email": "u1@x.com",
		"message":         "",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Nil(t, executor.action)
}

func TestMessageHandlerMarkRead(t *testing.T) {
	inbox := newStubInbox()
	inbox.messages = []dto.MessageResponse{{ID: 4, SenderID: "u2", RecipientID: "u1", Message: "hi"}}
	app, group := newUserApp("/api/v1/messages", "u1")
	handler.NewMessageHandler(&recordingExecutor{}, inbox, newValidator(), zerolog.Nop()).Register(group)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/messages/4/read", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/messages/5/read", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMessageHandlerWebsocketDeliversInbox(t *testing.T) {
	inbox := newStubInbox()
	app, group := newUserApp("/api/v1/messages", "u1")
	handler.NewMessageHandler(&recordingExecutor{}, inbox, newValidator(), zerolog.Nop()).Register(group)

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial("ws"+strings.TrimPrefix(baseURL, "http")+"/api/v1/messages/ws", nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	select {
	case userID := <-inbox.subscribed:
		require.Equal(t, "u1", userID)
	case <-time.After(2 * time.Second):
		t.Fatal("websocket never subscribed to the inbox")
	}

	inbox.Deliver(context.Background(), dto.MessageResponse{ID: 7, SenderID: "u2", RecipientID: "u1", Message: "ping"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received dto.MessageResponse
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, uint(7), received.ID)
	require.Equal(t, "ping", received.Message)
}

func TestMessageHandlerWebsocketRequiresUpgrade(t *testing.T) {
	app, group := newUserApp("/api/v1/messages", "u1")
	handler.NewMessageHandler(&recordingExecutor{}, newStubInbox(), newValidator(), zerolog.Nop()).Register(group)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/messages/ws", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func startFiberServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
