package service

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

func TestInboxDeliversToLocalSubscriber(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewInboxService(repository.NewMessageRepository(db), nil, "", nil, testLogger())

	ch, cleanup := svc.Subscribe("r1")
	defer cleanup()

	svc.Deliver(context.Background(), dto.MessageResponse{ID: 7, RecipientID: "r1", Message: "hello"})

	select {
	case message := <-ch:
		require.Equal(t, uint(7), message.ID)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	other, cleanupOther := svc.Subscribe("r2")
	defer cleanupOther()
	svc.Deliver(context.Background(), dto.MessageResponse{ID: 8, RecipientID: "r1"})
	select {
	case <-other:
		t.Fatal("message leaked to another recipient")
	default:
	}
}

func TestInboxFansOutAcrossNodesViaRedis(t *testing.T) {
	db := setupServiceDB(t)
	_, cache := setupRedis(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := NewInboxService(repository.NewMessageRepository(db), cache, "lumora:test", nil, testLogger())
	receiver := NewInboxService(repository.NewMessageRepository(db), cache, "lumora:test", nil, testLogger())
	receiver.Start(ctx)

	ch, cleanup := receiver.Subscribe("r1")
	defer cleanup()

	require.Eventually(t, func() bool {
		subs, err := cache.PubSubNumSub(ctx, "lumora:test:messages").Result()
		return err == nil && subs["lumora:test:messages"] > 0
	}, time.Second, 10*time.Millisecond)

	sender.Deliver(ctx, dto.MessageResponse{ID: 9, RecipientID: "r1", Message: "cross node"})

	select {
	case message := <-ch:
		require.Equal(t, "cross node", message.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("message not fanned out")
	}
}

func TestInboxUsesSingleFanOutTransport(t *testing.T) {
	db := setupServiceDB(t)
	_, cache := setupRedis(t)
	repo := repository.NewMessageRepository(db)

	local := NewInboxService(repo, nil, "lumora:test", nil, testLogger()).(*inboxService)
	require.Equal(t, transportLocal, local.transport)

	redisOnly := NewInboxService(repo, cache, "lumora:test", nil, testLogger()).(*inboxService)
	require.Equal(t, transportRedis, redisOnly.transport)

	both := NewInboxService(repo, cache, "lumora:test", &nats.Conn{}, testLogger()).(*inboxService)
	require.Equal(t, transportNATS, both.transport)
	require.Equal(t, "lumora.test.messages", both.natsSubject)

	unnamed := NewInboxService(repo, cache, "", &nats.Conn{}, testLogger()).(*inboxService)
	require.Equal(t, transportLocal, unnamed.transport)
}

func TestInboxListAndMarkRead(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewInboxService(repository.NewMessageRepository(db), nil, "", nil, testLogger())
	ctx := context.Background()

	message := models.PrivateMessage{SenderID: "s1", RecipientID: "r1", Message: "hi"}
	require.NoError(t, db.Create(&message).Error)

	list, err := svc.List(ctx, "r1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Read)

	read, err := svc.MarkRead(ctx, message.ID, "r1")
	require.NoError(t, err)
	require.True(t, read.Read)

	_, err = svc.MarkRead(ctx, message.ID, "someone-else")
	require.ErrorIs(t, err, ErrMessageNotFound)
}
