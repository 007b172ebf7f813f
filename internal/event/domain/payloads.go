package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// PayloadShape identifica la forma de payload que un kind declara.
type PayloadShape string

const (
	// ShapeNone se usa para kinds que no llevan payload.
	ShapeNone                            PayloadShape = ""
	ShapeCollectionCase                  PayloadShape = "CollectionCase"
	ShapeFulfilmentRequest               PayloadShape = "FulfilmentRequest"
	ShapeResponse                        PayloadShape = "Response"
	ShapeRespondentAuthenticatedResponse PayloadShape = "RespondentAuthenticatedResponse"
	ShapeRespondentRefusalDetails        PayloadShape = "RespondentRefusalDetails"
)

// Payload lo implementan los tipos puntero de cada registro de payload.
// El módulo nunca modifica su contenido.
type Payload interface {
	Shape() PayloadShape
}

// Estos son contratos de integración, se definen planos para el intercambio entre servicios.

type Address struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
	TownName     string `json:"townName,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Region       string `json:"region,omitempty"` // E, W o N
	Latitude     string `json:"latitude,omitempty"`
	Longitude    string `json:"longitude,omitempty"`
	UPRN         string `json:"uprn,omitempty"`
	ARID         string `json:"arid,omitempty"`
	AddressType  string `json:"addressType,omitempty"`
	EstabType    string `json:"estabType,omitempty"`
}

type Contact struct {
	Title    string `json:"title,omitempty"`
	Forename string `json:"forename,omitempty"`
	Surname  string `json:"surname,omitempty"`
	TelNo    string `json:"telNo,omitempty"`
}

type CollectionCase struct {
	ID                   string  `json:"id"`
	CaseRef              string  `json:"caseRef,omitempty"`
	CaseType             string  `json:"caseType,omitempty"`
	Survey               string  `json:"survey,omitempty"`
	CollectionExerciseID string  `json:"collectionExerciseId,omitempty"`
	SampleUnitRef        string  `json:"sampleUnitRef,omitempty"`
	Address              Address `json:"address"`
	State                string  `json:"state,omitempty"`
	ActionableFrom       string  `json:"actionableFrom,omitempty"`
}

func (*CollectionCase) Shape() PayloadShape { return ShapeCollectionCase }

type FulfilmentRequest struct {
	FulfilmentCode   string   `json:"fulfilmentCode,omitempty"`
	CaseID           string   `json:"caseId"`
	IndividualCaseID string   `json:"individualCaseId,omitempty"`
	Address          *Address `json:"address,omitempty"`
	Contact          *Contact `json:"contact,omitempty"`
}

func (*FulfilmentRequest) Shape() PayloadShape { return ShapeFulfilmentRequest }

// Response es el payload de SURVEY_LAUNCHED.
type Response struct {
	QuestionnaireID string    `json:"questionnaireId"`
	CaseID          uuid.UUID `json:"caseId"`
	AgentID         string    `json:"agentId,omitempty"`
}

func (*Response) Shape() PayloadShape { return ShapeResponse }

type RespondentAuthenticatedResponse struct {
	QuestionnaireID string    `json:"questionnaireId"`
	CaseID          uuid.UUID `json:"caseId"`
}

func (*RespondentAuthenticatedResponse) Shape() PayloadShape {
	return ShapeRespondentAuthenticatedResponse
}

type RefusalCase struct {
	ID string `json:"id"`
}

type RespondentRefusalDetails struct {
	Type           string       `json:"type,omitempty"`
	Report         string       `json:"report,omitempty"`
	AgentID        string       `json:"agentId,omitempty"`
	CallID         string       `json:"callId,omitempty"`
	IsHouseholder  bool         `json:"isHouseholder"`
	CollectionCase *RefusalCase `json:"collectionCase,omitempty"`
	Contact        *Contact     `json:"contact,omitempty"`
	Address        *Address     `json:"address,omitempty"`
}

func (*RespondentRefusalDetails) Shape() PayloadShape { return ShapeRespondentRefusalDetails }

// NewPayload crea una instancia vacía del registro correspondiente a la forma, lista para
// decodificar. Devuelve (nil, nil) para ShapeNone.
func NewPayload(shape PayloadShape) (Payload, error) {
	switch shape {
	case ShapeNone:
		return nil, nil
	case ShapeCollectionCase:
		return &CollectionCase{}, nil
	case ShapeFulfilmentRequest:
		return &FulfilmentRequest{}, nil
	case ShapeResponse:
		return &Response{}, nil
	case ShapeRespondentAuthenticatedResponse:
		return &RespondentAuthenticatedResponse{}, nil
	case ShapeRespondentRefusalDetails:
		return &RespondentRefusalDetails{}, nil
	}
	return nil, fmt.Errorf("unknown payload shape %q", shape)
}
