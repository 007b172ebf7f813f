package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "github.com/davicafu/eventpub/internal/config"
	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/outbound/sender"
)

func TestBuildSender_Memory(t *testing.T) {
	cfg := config.Default()

	s, closeFn := buildSender(cfg, zap.NewNop())
	defer closeFn()

	_, ok := s.(*sender.InMemorySender)
	assert.True(t, ok)
}

func TestBuildSender_Kafka(t *testing.T) {
	cfg := config.Default()
	cfg.Sender = config.SenderKafka

	s, closeFn := buildSender(cfg, zap.NewNop())
	defer closeFn()

	_, ok := s.(*sender.KafkaSender)
	assert.True(t, ok)
}

func TestBuildPersistence_None(t *testing.T) {
	backup, err := buildPersistence(context.Background(), config.Default(), zap.NewNop())
	require.NoError(t, err)
	defer backup.close()

	assert.False(t, backup.persistence.SupportsPersistence())
	assert.Nil(t, backup.replay)
}

func TestBuildPersistence_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Persistence = config.PersistenceSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "backup.db")

	ctx := context.Background()
	backup, err := buildPersistence(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer backup.close()

	require.NotNil(t, backup.replay)
	env := domain.NewEnvelopeBuilder().Build(domain.FulfilmentRequested, domain.SourceContactCentreAPI, domain.ChannelCC,
		domain.CommonPayload{FulfilmentRequest: &domain.FulfilmentRequest{CaseID: "id-123"}})
	require.NoError(t, backup.persistence.Persist(ctx, domain.FulfilmentRequested, domain.RoutingKeyFulfilmentRequest, env))

	pending, err := backup.replay.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, env.Event.TransactionID, pending[0].TransactionID)
}
