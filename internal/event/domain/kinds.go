package domain

import "sort"

// EventKind es el tipo lógico de un evento de negocio. El valor es el nombre que viaja
// en la cabecera del sobre.
type EventKind string

const (
	AddressModified         EventKind = "ADDRESS_MODIFIED"
	AddressNotValid         EventKind = "ADDRESS_NOT_VALID"
	AddressTypeChanged      EventKind = "ADDRESS_TYPE_CHANGED"
	AppointmentRequested    EventKind = "APPOINTMENT_REQUESTED"
	CaseCreated             EventKind = "CASE_CREATED"
	CaseUpdated             EventKind = "CASE_UPDATED"
	CCSPropertyListed       EventKind = "CCS_PROPERTY_LISTED"
	FieldCaseUpdated        EventKind = "FIELD_CASE_UPDATED"
	FulfilmentConfirmed     EventKind = "FULFILMENT_CONFIRMED"
	FulfilmentRequested     EventKind = "FULFILMENT_REQUESTED"
	NewAddressReported      EventKind = "NEW_ADDRESS_REPORTED"
	QuestionnaireLinked     EventKind = "QUESTIONNAIRE_LINKED"
	RefusalReceived         EventKind = "REFUSAL_RECEIVED"
	RespondentAuthenticated EventKind = "RESPONDENT_AUTHENTICATED"
	ResponseReceived        EventKind = "RESPONSE_RECEIVED"
	SampleUnitValidated     EventKind = "SAMPLE_UNIT_VALIDATED"
	SurveyLaunched          EventKind = "SURVEY_LAUNCHED"
	UACUpdated              EventKind = "UAC_UPDATED"
	UndeliveredMailReported EventKind = "UNDELIVERED_MAIL_REPORTED"
)

var eventKinds = map[EventKind]struct{}{
	AddressModified:         {},
	AddressNotValid:         {},
	AddressTypeChanged:      {},
	AppointmentRequested:    {},
	CaseCreated:             {},
	CaseUpdated:             {},
	CCSPropertyListed:       {},
	FieldCaseUpdated:        {},
	FulfilmentConfirmed:     {},
	FulfilmentRequested:     {},
	NewAddressReported:      {},
	QuestionnaireLinked:     {},
	RefusalReceived:         {},
	RespondentAuthenticated: {},
	ResponseReceived:        {},
	SampleUnitValidated:     {},
	SurveyLaunched:          {},
	UACUpdated:              {},
	UndeliveredMailReported: {},
}

// Valid indica si el kind pertenece al conjunto cerrado declarado.
func (k EventKind) Valid() bool {
	_, ok := eventKinds[k]
	return ok
}

func (k EventKind) String() string { return string(k) }

// EventKinds devuelve todos los kinds declarados, ordenados.
func EventKinds() []EventKind {
	out := make([]EventKind, 0, len(eventKinds))
	for k := range eventKinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Source identifica el servicio que emite el evento.
type Source string

const (
	SourceActionExporter    Source = "ACTION_EXPORTER"
	SourceAddressResolution Source = "ADDRESS_RESOLUTION"
	SourceCaseService       Source = "CASE_SERVICE"
	SourceContactCentreAPI  Source = "CONTACT_CENTRE_API"
	SourceFieldworkGateway  Source = "FIELDWORK_GATEWAY"
	SourceNotifyGateway     Source = "NOTIFY_GATEWAY"
	SourceReceiptService    Source = "RECEIPT_SERVICE"
	SourceRespondentHome    Source = "RESPONDENT_HOME"
	SourceSampleLoader      Source = "SAMPLE_LOADER"
)

func (s Source) Valid() bool {
	switch s {
	case SourceActionExporter, SourceAddressResolution, SourceCaseService,
		SourceContactCentreAPI, SourceFieldworkGateway, SourceNotifyGateway,
		SourceReceiptService, SourceRespondentHome, SourceSampleLoader:
		return true
	}
	return false
}

// Channel identifica el canal de interacción de origen.
type Channel string

const (
	ChannelAD    Channel = "AD"
	ChannelAR    Channel = "AR"
	ChannelCC    Channel = "CC"
	ChannelEQ    Channel = "EQ"
	ChannelField Channel = "FIELD"
	ChannelPPO   Channel = "PPO"
	ChannelPQRS  Channel = "PQRS"
	ChannelQM    Channel = "QM"
	ChannelRH    Channel = "RH"
	ChannelRM    Channel = "RM"
	ChannelRO    Channel = "RO"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelAD, ChannelAR, ChannelCC, ChannelEQ, ChannelField, ChannelPPO,
		ChannelPQRS, ChannelQM, ChannelRH, ChannelRM, ChannelRO:
		return true
	}
	return false
}
