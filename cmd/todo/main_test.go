package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/todo/config"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/logging"
)

func TestOpenRedis_NotNeeded(t *testing.T) {
	client, err := openRedis(context.Background(), config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOpenRedis_SharedByStoreAndEvents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := config.Config{
		StoreDriver:  config.DriverRedis,
		RedisURL:     "redis://" + mr.Addr(),
		EventsStream: "redis",
	}

	client, err := openRedis(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	db, err := openStore(ctx, cfg, client)
	require.NoError(t, err)
	require.NoError(t, db.InsertIfAbsent(ctx, core.StoredUser{Identifier: "alice", PasswordHash: "h", CreatedAt: time.Now()}))

	publisher, err := openPublisher(cfg, client)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish("todo.user.registered", message.NewMessage("1", []byte(`{}`))))

	assert.True(t, mr.Exists("todo:user:alice"))
	assert.True(t, mr.Exists("todo.user.registered"))
	assert.Equal(t, 1, mr.TotalConnectionCount(), "store and publisher share one connection pool")

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelDebug)
	closeIgnoringClosed(logger, "event publisher", publisher)
	closeIgnoringClosed(logger, "store", db)
	closeIgnoringClosed(logger, "redis client", client)
	assert.Empty(t, buf.String())
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := openRedis(context.Background(), config.Config{StoreDriver: config.DriverRedis, RedisURL: "redis://" + addr})
	assert.Error(t, err)
}
