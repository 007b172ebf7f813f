package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/eventpub/internal/event/domain"
)

type mockExecer struct {
	mock.Mock
}

func (m *mockExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	called := m.Called(ctx, query, args)
	res, _ := called.Get(0).(sql.Result)
	return res, called.Error(1)
}

func TestEventArchive_Persist(t *testing.T) {
	db := new(mockExecer)
	db.On("ExecContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()

	dateTime := time.Date(2021, 3, 21, 9, 0, 0, 0, time.UTC)
	env := domain.NewEnvelopeBuilder(domain.WithClock(func() time.Time { return dateTime })).
		Build(domain.FulfilmentRequested, domain.SourceContactCentreAPI, domain.ChannelCC,
			domain.CommonPayload{FulfilmentRequest: &domain.FulfilmentRequest{CaseID: "id-123"}})

	archive := newEventArchive(db)
	assert.True(t, archive.SupportsPersistence())
	require.NoError(t, archive.Persist(context.Background(), domain.FulfilmentRequested, domain.RoutingKeyFulfilmentRequest, env))
	db.AssertExpectations(t)

	args := db.Calls[0].Arguments.Get(2).([]any)
	require.Len(t, args, 8)
	assert.Equal(t, env.Event.TransactionID, args[0])
	assert.Equal(t, "FULFILMENT_REQUESTED", args[1])
	assert.Equal(t, "event.fulfilment.request", args[2])
	assert.Equal(t, "CONTACT_CENTRE_API", args[3])
	assert.Equal(t, "CC", args[4])
	assert.Equal(t, dateTime, args[5])
	assert.Contains(t, args[6], `"caseId":"id-123"`)
}

func TestEventArchive_PersistFailure(t *testing.T) {
	cause := errors.New("code: 241, message: memory limit exceeded")
	db := new(mockExecer)
	db.On("ExecContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, cause).Once()

	err := newEventArchive(db).Persist(context.Background(), domain.CaseCreated, domain.RoutingKeyCaseUpdate,
		domain.NewEnvelopeBuilder().Build(domain.CaseCreated, domain.SourceCaseService, domain.ChannelRM,
			domain.CommonPayload{CollectionCase: &domain.CollectionCase{ID: "c-1"}}))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
}
