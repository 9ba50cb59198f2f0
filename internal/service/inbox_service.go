package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/observability"
	"github.com/noah-isme/lumora-api/internal/repository"
)

const inboxBufferSize = 16

type inboxTransport int

const (
	transportLocal inboxTransport = iota
	transportRedis
	transportNATS
)

func (t inboxTransport) String() string {
	switch t {
	case transportRedis:
		return "redis"
	case transportNATS:
		return "nats"
	default:
		return "local"
	}
}

// InboxService reads private messages and streams new ones to connected recipients.
type InboxService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]dto.MessageResponse, error)
	MarkRead(ctx context.Context, id uint, userID string) (dto.MessageResponse, error)
	Subscribe(userID string) (<-chan dto.MessageResponse, func())
	Deliver(ctx context.Context, message dto.MessageResponse)
	Start(ctx context.Context)
}

type inboxService struct {
	repo         repository.MessageRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
	broker       *inboxBroker
	nodeID       string
	transport    inboxTransport
}

type inboxEvent struct {
	Source  string              `json:"source"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

type inboxBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.MessageResponse]struct{}
}

// NewInboxService constructs the inbox. channelBase names the redis channel and NATS subject used for
// cross-node fan-out. Events travel over NATS when a connection is supplied, otherwise over redis.
func NewInboxService(repo repository.MessageRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) InboxService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":messages"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".messages"
	}

	transport := transportLocal
	switch {
	case natsConn != nil && subject != "":
		transport = transportNATS
	case redisClient != nil && channel != "":
		transport = transportRedis
	}

	return &inboxService{
		transport:    transport,
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "inbox_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/lumora-api/internal/service/inbox"),
		broker: &inboxBroker{
			subscribers: make(map[string]map[chan dto.MessageResponse]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *inboxService) Start(ctx context.Context) {
	switch s.transport {
	case transportNATS:
		s.consumeNATS(ctx)
	case transportRedis:
		go s.consumeRedis(ctx)
	}
	s.logger.Info().Str("transport", s.transport.String()).Msg("inbox fan-out started")
}

func (s *inboxService) List(ctx context.Context, userID string, limit, offset int) ([]dto.MessageResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}

	messages, err := s.repo.ListByRecipient(ctx, userID, limit, offset)
	if err != nil {
		return nil, persistenceError(err)
	}
	return dto.NewMessageResponseSlice(messages), nil
}

func (s *inboxService) MarkRead(ctx context.Context, id uint, userID string) (dto.MessageResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "inbox.mark_read", trace.WithAttributes(
		attribute.String("inbox.user_id", userID),
	))
	defer span.End()

	message, err := s.repo.MarkRead(spanCtx, id, userID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrMessageNotFound
		}
		return dto.MessageResponse{}, persistenceError(err)
	}
	return dto.NewMessageResponse(message), nil
}

func (s *inboxService) Subscribe(userID string) (<-chan dto.MessageResponse, func()) {
	channel := make(chan dto.MessageResponse, inboxBufferSize)

	s.broker.subscribe(userID, channel)
	observability.InboxSubscribers().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(userID, channel)
			observability.InboxSubscribers().Dec()
		})
	}
	return channel, cleanup
}

// Deliver pushes a committed message to local subscribers and to the other nodes.
func (s *inboxService) Deliver(ctx context.Context, message dto.MessageResponse) {
	spanCtx, span := s.tracer.Start(ctx, "inbox.deliver", trace.WithAttributes(
		attribute.String("inbox.recipient_id", message.RecipientID),
	))
	defer span.End()

	s.broker.broadcast(message.RecipientID, message)
	observability.InboxDeliveries().WithLabelValues("local").Inc()

	if err := s.publish(spanCtx, message); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to publish message to broker")
	}
}

func (s *inboxService) publish(ctx context.Context, message dto.MessageResponse) error {
	if s.transport == transportLocal {
		return nil
	}

	event := inboxEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	switch s.transport {
	case transportNATS:
		return s.nats.Publish(s.natsSubject, payload)
	case transportRedis:
		return s.redis.Publish(ctx, s.redisChannel, payload).Err()
	default:
		return nil
	}
}

func (s *inboxService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("inbox redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload), "redis")
	}
}

// consumeNATS subscribes without a queue group so every node sees every event.
func (s *inboxService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data, "nats")
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats inbox subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain inbox nats subscription")
		}
	}()
}

func (s *inboxService) handleEvent(payload []byte, origin string) {
	var event inboxEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid inbox event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	observability.InboxDeliveries().WithLabelValues(origin).Inc()
	s.broker.broadcast(event.Message.RecipientID, event.Message)
}

func (b *inboxBroker) subscribe(userID string, ch chan dto.MessageResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[userID]; !exists {
		b.subscribers[userID] = make(map[chan dto.MessageResponse]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
}

func (b *inboxBroker) unsubscribe(userID string, ch chan dto.MessageResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[userID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

func (b *inboxBroker) broadcast(userID string, message dto.MessageResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[userID] {
		select {
		case ch <- message:
		default:
		}
	}
}
