package domain

import (
	"errors"
	"fmt"
)

type payloadSlot struct {
	shape PayloadShape
	place func(*CommonPayload, Payload) bool
}

// payloadSlots es el conjunto cerrado de kinds cableados a un campo de CommonPayload.
// Un kind puede declararse antes de tener su cableado; CheckWiring lo detecta al arrancar.
var payloadSlots = map[EventKind]payloadSlot{
	CaseCreated:             {ShapeCollectionCase, placeCollectionCase},
	CaseUpdated:             {ShapeCollectionCase, placeCollectionCase},
	FulfilmentRequested:     {ShapeFulfilmentRequest, placeFulfilmentRequest},
	SurveyLaunched:          {ShapeResponse, placeResponse},
	RespondentAuthenticated: {ShapeRespondentAuthenticatedResponse, placeRespondentAuthenticated},
	RefusalReceived:         {ShapeRespondentRefusalDetails, placeRefusal},
}

// PlacePayload coloca el payload en el único campo de la unión que corresponde al kind.
func PlacePayload(kind EventKind, payload Payload) (CommonPayload, error) {
	var cp CommonPayload

	slot, ok := payloadSlots[kind]
	if !ok {
		return cp, fmt.Errorf("%w: %T for event type %s", ErrUnsupportedPayloadMapping, payload, kind)
	}
	if !slot.place(&cp, payload) {
		return cp, fmt.Errorf("%w: payload type %T incompatible for event type %s", ErrInvalidPayload, payload, kind)
	}
	return cp, nil
}

// CheckWiring verifica que todo kind con payload declarado tiene un campo cableado de la
// misma forma. Se ejecuta al construir el publisher.
func CheckWiring(shapes *ShapeTable) error {
	var errs []error
	for _, kind := range EventKinds() {
		shape, _ := shapes.Shape(kind)
		if shape == ShapeNone {
			continue
		}
		slot, ok := payloadSlots[kind]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s declares %s", ErrUnsupportedPayloadMapping, kind, shape))
			continue
		}
		if slot.shape != shape {
			errs = append(errs, fmt.Errorf("%w: %s declares %s but is wired to %s",
				ErrUnsupportedPayloadMapping, kind, shape, slot.shape))
		}
	}
	return errors.Join(errs...)
}

func placeCollectionCase(cp *CommonPayload, p Payload) bool {
	v, ok := p.(*CollectionCase)
	if !ok || v == nil {
		return false
	}
	cp.CollectionCase = v
	return true
}

func placeFulfilmentRequest(cp *CommonPayload, p Payload) bool {
	v, ok := p.(*FulfilmentRequest)
	if !ok || v == nil {
		return false
	}
	cp.FulfilmentRequest = v
	return true
}

func placeResponse(cp *CommonPayload, p Payload) bool {
	v, ok := p.(*Response)
	if !ok || v == nil {
		return false
	}
	cp.Response = v
	return true
}

func placeRespondentAuthenticated(cp *CommonPayload, p Payload) bool {
	v, ok := p.(*RespondentAuthenticatedResponse)
	if !ok || v == nil {
		return false
	}
	cp.RespondentAuthenticatedResponse = v
	return true
}

func placeRefusal(cp *CommonPayload, p Payload) bool {
	v, ok := p.(*RespondentRefusalDetails)
	if !ok || v == nil {
		return false
	}
	cp.Refusal = v
	return true
}
