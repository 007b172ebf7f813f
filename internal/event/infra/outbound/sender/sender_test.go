package sender

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/eventpub/internal/event/domain"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func sampleEnvelope() domain.Envelope {
	return domain.NewEnvelopeBuilder().Build(domain.SurveyLaunched, domain.SourceRespondentHome, domain.ChannelRH,
		domain.CommonPayload{Response: &domain.Response{
			QuestionnaireID: "1110000009",
			CaseID:          uuid.MustParse("dc4477d1-dd3f-4c69-b181-7ff725dc9fa4"),
		}})
}

func TestKafkaSender_Send(t *testing.T) {
	env := sampleEnvelope()
	writer := new(mockWriter)

	var written []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	s := NewKafkaSender(writer, zap.NewNop())
	require.NoError(t, s.Send(context.Background(), domain.RoutingKeyResponseAuthentication, env))
	writer.AssertExpectations(t)

	require.Len(t, written, 1)
	msg := written[0]
	assert.Equal(t, "event.response.authentication", msg.Topic)
	assert.Equal(t, env.Event.TransactionID, string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "SURVEY_LAUNCHED", headers[HeaderEventType])
	assert.Equal(t, "RESPONDENT_HOME", headers[HeaderSource])
	assert.Equal(t, env.Event.TransactionID, headers[HeaderTransactionID])

	decoded, err := domain.DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, env.Event.TransactionID, decoded.Event.TransactionID)
	assert.Equal(t, env.Payload.Response.CaseID, decoded.Payload.Response.CaseID)
}

func TestKafkaSender_PropagatesWriterError(t *testing.T) {
	cause := errors.New("leader not available")
	writer := new(mockWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(cause).Once()

	s := NewKafkaSender(writer, zap.NewNop())
	err := s.Send(context.Background(), domain.RoutingKeyCaseUpdate, sampleEnvelope())
	assert.ErrorIs(t, err, cause)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, 0)
	defer w.Close()

	assert.Empty(t, w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.True(t, w.AllowAutoTopicCreation)
}

func TestInMemorySender_DeliversPerKey(t *testing.T) {
	s := NewInMemorySender()
	defer s.Close()

	auth := s.Subscribe(domain.RoutingKeyResponseAuthentication, 1)
	cases := s.Subscribe(domain.RoutingKeyCaseUpdate, 1)

	env := sampleEnvelope()
	require.NoError(t, s.Send(context.Background(), domain.RoutingKeyResponseAuthentication, env))

	select {
	case d := <-auth:
		assert.Equal(t, domain.RoutingKeyResponseAuthentication, d.Key)
		assert.Equal(t, env.Event.TransactionID, d.Envelope.Event.TransactionID)
	default:
		t.Fatal("el suscriptor no recibió el sobre")
	}

	select {
	case <-cases:
		t.Fatal("entrega en una routing key ajena")
	default:
	}
}

func TestInMemorySender_FullBufferReportsDrop(t *testing.T) {
	s := NewInMemorySender()
	sub := s.Subscribe(domain.RoutingKeyCaseUpdate, 1)

	require.NoError(t, s.Send(context.Background(), domain.RoutingKeyCaseUpdate, sampleEnvelope()))
	for i := 0; i < 4; i++ {
		err := s.Send(context.Background(), domain.RoutingKeyCaseUpdate, sampleEnvelope())
		assert.ErrorIs(t, err, ErrDeliveryDropped)
	}
	assert.Len(t, sub, 1)

	// al vaciar el buffer vuelve a aceptar
	<-sub
	assert.NoError(t, s.Send(context.Background(), domain.RoutingKeyCaseUpdate, sampleEnvelope()))

	// sin suscriptores no hay error
	assert.NoError(t, s.Send(context.Background(), domain.RoutingKeyUACUpdate, sampleEnvelope()))
}

func TestInMemorySender_Closed(t *testing.T) {
	s := NewInMemorySender()
	sub := s.Subscribe(domain.RoutingKeyCaseUpdate, 1)
	s.Close()
	s.Close()

	_, open := <-sub
	assert.False(t, open)
	assert.ErrorIs(t, s.Send(context.Background(), domain.RoutingKeyCaseUpdate, sampleEnvelope()), ErrSenderClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewInMemorySender().Send(ctx, domain.RoutingKeyCaseUpdate, sampleEnvelope()), context.Canceled)
}
