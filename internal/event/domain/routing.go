package domain

import (
	"fmt"
	"sort"
)

// RoutingKey es el nombre de topic que usa el bus. Es un contrato con los consumidores:
// no se renombra sin ellos.
type RoutingKey string

func (k RoutingKey) String() string { return string(k) }

const (
	RoutingKeyFulfilmentRequest      RoutingKey = "event.fulfilment.request"
	RoutingKeyFulfilmentConfirmation RoutingKey = "event.fulfilment.confirmation"
	RoutingKeyFulfilmentUndelivered  RoutingKey = "event.fulfilment.undelivered"
	RoutingKeyResponseAuthentication RoutingKey = "event.response.authentication"
	RoutingKeyResponseReceipt        RoutingKey = "event.response.receipt"
	RoutingKeyRespondentRefusal      RoutingKey = "event.respondent.refusal"
	RoutingKeyUACUpdate              RoutingKey = "event.uac.update"
	RoutingKeyQuestionnaireUpdate    RoutingKey = "event.questionnaire.update"
	RoutingKeyCaseUpdate             RoutingKey = "event.case.update.event"
	RoutingKeyCaseAddressUpdate      RoutingKey = "event.case.address.update"
	RoutingKeyCaseAppointment        RoutingKey = "event.case.appointment"
	RoutingKeyFieldCaseUpdate        RoutingKey = "event.fieldcase.update"
	RoutingKeySampleUnitUpdate       RoutingKey = "event.sampleunit.update"
	RoutingKeyCCSPropertyListing     RoutingKey = "event.ccs.propertylisting"
)

// Route asocia una routing key con los kinds que acepta.
type Route struct {
	Key   RoutingKey  `json:"key"`
	Kinds []EventKind `json:"kinds"`
}

// DefaultRoutes devuelve la tabla versionada de rutas.
func DefaultRoutes() []Route {
	return []Route{
		{RoutingKeyFulfilmentRequest, []EventKind{FulfilmentRequested}},
		{RoutingKeyFulfilmentConfirmation, []EventKind{FulfilmentConfirmed}},
		{RoutingKeyFulfilmentUndelivered, []EventKind{UndeliveredMailReported}},
		{RoutingKeyResponseAuthentication, []EventKind{RespondentAuthenticated, SurveyLaunched}},
		{RoutingKeyResponseReceipt, []EventKind{ResponseReceived}},
		{RoutingKeyRespondentRefusal, []EventKind{RefusalReceived}},
		{RoutingKeyUACUpdate, []EventKind{UACUpdated}},
		{RoutingKeyQuestionnaireUpdate, []EventKind{QuestionnaireLinked}},
		{RoutingKeyCaseUpdate, []EventKind{CaseUpdated, CaseCreated}},
		{RoutingKeyCaseAddressUpdate, []EventKind{NewAddressReported, AddressModified, AddressNotValid, AddressTypeChanged}},
		{RoutingKeyCaseAppointment, []EventKind{AppointmentRequested}},
		{RoutingKeyFieldCaseUpdate, []EventKind{FieldCaseUpdated}},
		{RoutingKeySampleUnitUpdate, []EventKind{SampleUnitValidated}},
		{RoutingKeyCCSPropertyListing, []EventKind{CCSPropertyListed}},
	}
}

// RoutingTable es de solo lectura una vez construida, por lo que admite lecturas
// concurrentes sin sincronización.
type RoutingTable struct {
	byKind map[EventKind]RoutingKey
	byKey  map[RoutingKey][]EventKind
	keys   []RoutingKey
}

// NewRoutingTable valida las rutas y construye la tabla. Un kind reclamado por más de una
// key es un error de configuración y se detecta aquí, no al publicar.
func NewRoutingTable(routes ...Route) (*RoutingTable, error) {
	t := &RoutingTable{
		byKind: make(map[EventKind]RoutingKey),
		byKey:  make(map[RoutingKey][]EventKind, len(routes)),
		keys:   make([]RoutingKey, 0, len(routes)),
	}

	for _, r := range routes {
		if r.Key == "" {
			return nil, fmt.Errorf("%w: empty routing key", ErrInvalidRoute)
		}
		if _, dup := t.byKey[r.Key]; dup {
			return nil, fmt.Errorf("%w: routing key %s declared twice", ErrInvalidRoute, r.Key)
		}

		kinds := make([]EventKind, 0, len(r.Kinds))
		for _, kind := range r.Kinds {
			if !kind.Valid() {
				return nil, fmt.Errorf("%w: %w %q on %s", ErrInvalidRoute, ErrUnknownEventKind, kind, r.Key)
			}
			if other, taken := t.byKind[kind]; taken {
				return nil, fmt.Errorf("%w: %s on %s and %s", ErrAmbiguousRoute, kind, other, r.Key)
			}
			t.byKind[kind] = r.Key
			kinds = append(kinds, kind)
		}

		t.byKey[r.Key] = kinds
		t.keys = append(t.keys, r.Key)
	}

	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i] < t.keys[j] })
	return t, nil
}

// NewDefaultRoutingTable construye la tabla a partir de DefaultRoutes.
func NewDefaultRoutingTable() (*RoutingTable, error) {
	return NewRoutingTable(DefaultRoutes()...)
}

// Lookup devuelve la key que acepta el kind o ErrUnroutableEventKind.
func (t *RoutingTable) Lookup(kind EventKind) (RoutingKey, error) {
	key, ok := t.byKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnroutableEventKind, kind)
	}
	return key, nil
}

// KindsFor devuelve una copia de los kinds que acepta la key.
func (t *RoutingTable) KindsFor(key RoutingKey) []EventKind {
	kinds, ok := t.byKey[key]
	if !ok {
		return nil
	}
	return append([]EventKind(nil), kinds...)
}

// Routes devuelve la tabla completa ordenada por key.
func (t *RoutingTable) Routes() []Route {
	out := make([]Route, 0, len(t.keys))
	for _, key := range t.keys {
		out = append(out, Route{Key: key, Kinds: t.KindsFor(key)})
	}
	return out
}
