package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeBuilder_Build(t *testing.T) {
	fixedTime := time.Date(2021, 3, 21, 9, 0, 0, 0, time.UTC)
	fixedID := uuid.MustParse("6b2f6e2c-8f1d-4a0e-9a47-0a3c2b1d5e77")
	builder := NewEnvelopeBuilder(
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() uuid.UUID { return fixedID }),
	)

	fr := &FulfilmentRequest{CaseID: "id-123"}
	env := builder.Build(FulfilmentRequested, SourceContactCentreAPI, ChannelCC, CommonPayload{FulfilmentRequest: fr})

	assert.Equal(t, FulfilmentRequested, env.Event.Type)
	assert.Equal(t, SourceContactCentreAPI, env.Event.Source)
	assert.Equal(t, ChannelCC, env.Event.Channel)
	assert.Equal(t, fixedTime, env.Event.DateTime)
	assert.Equal(t, fixedID.String(), env.Event.TransactionID)
	assert.Same(t, fr, env.Payload.FulfilmentRequest)
}

func TestEnvelopeBuilder_FreshHeaderPerCall(t *testing.T) {
	builder := NewEnvelopeBuilder()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		h := builder.BuildHeader(CaseCreated, SourceCaseService, ChannelRM)
		id, err := uuid.Parse(h.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())

		_, dup := seen[h.TransactionID]
		require.False(t, dup, "transactionId repetido: %s", h.TransactionID)
		seen[h.TransactionID] = struct{}{}
	}
}

func TestEnvelope_WireShape(t *testing.T) {
	caseID := uuid.MustParse("dc4477d1-dd3f-4c69-b181-7ff725dc9fa4")
	builder := NewEnvelopeBuilder(
		WithClock(func() time.Time { return time.Date(2021, 3, 21, 9, 0, 0, 0, time.UTC) }),
	)
	env := builder.Build(SurveyLaunched, SourceRespondentHome, ChannelRH, CommonPayload{
		Response: &Response{QuestionnaireID: "1110000009", CaseID: caseID},
	})

	data, err := EncodeEnvelope(env)
	require.NoError(t, err)

	var wire map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "SURVEY_LAUNCHED", wire["event"]["type"])
	assert.Equal(t, "RESPONDENT_HOME", wire["event"]["source"])
	assert.Equal(t, "RH", wire["event"]["channel"])
	assert.Equal(t, "2021-03-21T09:00:00Z", wire["event"]["dateTime"])
	assert.Equal(t, env.Event.TransactionID, wire["event"]["transactionId"])

	// solo un campo de payload relleno
	assert.Len(t, wire["payload"], 1)
	response, ok := wire["payload"]["response"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1110000009", response["questionnaireId"])
	assert.Equal(t, caseID.String(), response["caseId"])

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env.Event.TransactionID, decoded.Event.TransactionID)
	assert.Equal(t, caseID, decoded.Payload.Response.CaseID)
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(ShapeFulfilmentRequest, []byte(`{"caseId":"id-123","fulfilmentCode":"P_OR_H1"}`))
	require.NoError(t, err)
	fr, ok := p.(*FulfilmentRequest)
	require.True(t, ok)
	assert.Equal(t, "id-123", fr.CaseID)
	assert.Equal(t, "P_OR_H1", fr.FulfilmentCode)

	p, err = DecodePayload(ShapeNone, nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = DecodePayload(ShapeNone, []byte(`{"caseId":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodePayload(ShapeResponse, []byte(`null`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodePayload(ShapeResponse, []byte(`{"caseId":"not-a-uuid"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestKindsSourcesChannels_Valid(t *testing.T) {
	assert.Len(t, EventKinds(), 19)
	for _, k := range EventKinds() {
		assert.True(t, k.Valid())
	}
	assert.False(t, EventKind("CASE_DELETED").Valid())

	assert.True(t, SourceNotifyGateway.Valid())
	assert.False(t, Source("BILLING").Valid())

	assert.True(t, ChannelField.Valid())
	assert.False(t, Channel("SMS").Valid())
}

func TestDispatchError_Unwrap(t *testing.T) {
	cause := assert.AnError
	dErr := &DispatchError{Kind: CaseCreated, RoutingKey: RoutingKeyCaseUpdate, TransactionID: "tx", Cause: cause}

	assert.ErrorIs(t, dErr, ErrDispatchFailed)
	assert.ErrorIs(t, dErr, cause)
	assert.NotErrorIs(t, dErr, ErrPersistence)
	assert.False(t, dErr.Persisted())

	dErr.PersistAttempted = true
	assert.True(t, dErr.Persisted())
	assert.Contains(t, dErr.Error(), "persisted for replay")

	dErr.PersistErr = ErrPersistence
	assert.ErrorIs(t, dErr, ErrPersistence)
	assert.ErrorIs(t, dErr, cause)
	assert.False(t, dErr.Persisted())
}
