package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foreignPayload es un payload con una forma que ningún kind declara.
type foreignPayload struct{}

func (*foreignPayload) Shape() PayloadShape { return "Foreign" }

func samplePayloads() map[PayloadShape]Payload {
	return map[PayloadShape]Payload{
		ShapeCollectionCase:                  &CollectionCase{ID: "c-1"},
		ShapeFulfilmentRequest:               &FulfilmentRequest{CaseID: "id-123"},
		ShapeResponse:                        &Response{QuestionnaireID: "1110000009", CaseID: uuid.New()},
		ShapeRespondentAuthenticatedResponse: &RespondentAuthenticatedResponse{QuestionnaireID: "1110000009", CaseID: uuid.New()},
		ShapeRespondentRefusalDetails:        &RespondentRefusalDetails{AgentID: "x1"},
	}
}

func TestShapeTable_CheckAcceptsDeclaredShape(t *testing.T) {
	shapes, err := NewDefaultShapeTable()
	require.NoError(t, err)

	samples := samplePayloads()
	for kind, shape := range DefaultShapes() {
		assert.NoError(t, shapes.Check(kind, samples[shape]), "kind %s", kind)
	}
}

func TestShapeTable_CheckRejectsEveryOtherShape(t *testing.T) {
	shapes, err := NewDefaultShapeTable()
	require.NoError(t, err)

	samples := samplePayloads()
	for kind, declared := range DefaultShapes() {
		for shape, payload := range samples {
			if shape == declared {
				continue
			}
			err := shapes.Check(kind, payload)
			assert.ErrorIs(t, err, ErrInvalidPayload, "kind %s con %s", kind, shape)
		}
		assert.ErrorIs(t, shapes.Check(kind, &foreignPayload{}), ErrInvalidPayload)
		assert.ErrorIs(t, shapes.Check(kind, nil), ErrInvalidPayload)
	}
}

func TestShapeTable_KindsWithoutPayload(t *testing.T) {
	shapes, err := NewDefaultShapeTable()
	require.NoError(t, err)

	assert.NoError(t, shapes.Check(AddressModified, nil))

	err = shapes.Check(AddressModified, &foreignPayload{})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Contains(t, err.Error(), "incompatible for event type")

	for _, payload := range samplePayloads() {
		assert.ErrorIs(t, shapes.Check(UACUpdated, payload), ErrInvalidPayload)
	}
}

func TestShapeTable_TypedNilPayload(t *testing.T) {
	shapes, err := NewDefaultShapeTable()
	require.NoError(t, err)

	var fr *FulfilmentRequest
	assert.ErrorIs(t, shapes.Check(FulfilmentRequested, fr), ErrInvalidPayload)
	assert.ErrorIs(t, shapes.Check(AddressModified, fr), ErrInvalidPayload)
}

func TestShapeTable_UnknownKind(t *testing.T) {
	shapes, err := NewDefaultShapeTable()
	require.NoError(t, err)

	assert.ErrorIs(t, shapes.Check("NOT_A_KIND", nil), ErrUnknownEventKind)
}

func TestNewShapeTable_RejectsBadDeclarations(t *testing.T) {
	_, err := NewShapeTable(map[EventKind]PayloadShape{"NOT_A_KIND": ShapeResponse})
	assert.ErrorIs(t, err, ErrUnknownEventKind)

	_, err = NewShapeTable(map[EventKind]PayloadShape{UACUpdated: "Nope"})
	assert.Error(t, err)
}
