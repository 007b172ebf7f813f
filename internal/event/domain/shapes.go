package domain

import (
	"fmt"
	"reflect"
)

// DefaultShapes declara la forma de payload de cada kind. Los kinds que no aparecen no
// llevan payload.
func DefaultShapes() map[EventKind]PayloadShape {
	return map[EventKind]PayloadShape{
		CaseCreated:             ShapeCollectionCase,
		CaseUpdated:             ShapeCollectionCase,
		FulfilmentRequested:     ShapeFulfilmentRequest,
		RefusalReceived:         ShapeRespondentRefusalDetails,
		RespondentAuthenticated: ShapeRespondentAuthenticatedResponse,
		SurveyLaunched:          ShapeResponse,
	}
}

// ShapeTable es la tabla inmutable kind -> forma de payload.
type ShapeTable struct {
	shapes map[EventKind]PayloadShape
}

// NewShapeTable copia las declaraciones y rellena con ShapeNone los kinds no mencionados.
func NewShapeTable(declared map[EventKind]PayloadShape) (*ShapeTable, error) {
	shapes := make(map[EventKind]PayloadShape, len(eventKinds))
	for kind := range eventKinds {
		shapes[kind] = ShapeNone
	}
	for kind, shape := range declared {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
		}
		if _, err := NewPayload(shape); err != nil {
			return nil, fmt.Errorf("shape for %s: %w", kind, err)
		}
		shapes[kind] = shape
	}
	return &ShapeTable{shapes: shapes}, nil
}

func NewDefaultShapeTable() (*ShapeTable, error) {
	return NewShapeTable(DefaultShapes())
}

// Shape devuelve la forma declarada para el kind.
func (t *ShapeTable) Shape(kind EventKind) (PayloadShape, bool) {
	shape, ok := t.shapes[kind]
	return shape, ok
}

// Check comprueba que el payload tiene la forma que declara el kind. Un puntero nil con
// tipo cuenta como payload ausente con forma distinta.
func (t *ShapeTable) Check(kind EventKind, payload Payload) error {
	declared, ok := t.shapes[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}

	if isNilPayload(payload) {
		if payload == nil && declared == ShapeNone {
			return nil
		}
		return fmt.Errorf("%w: nil payload %T for event type %s", ErrInvalidPayload, payload, kind)
	}

	if declared == ShapeNone {
		return fmt.Errorf("%w: event type %s carries no payload, got %T", ErrInvalidPayload, kind, payload)
	}

	if actual := payload.Shape(); actual != declared {
		return fmt.Errorf("%w: payload type %T incompatible for event type %s", ErrInvalidPayload, payload, kind)
	}
	return nil
}

func isNilPayload(p Payload) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
