package domain

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeEnvelope serializa el sobre con la forma que ven los consumidores del bus.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", env.Event.TransactionID, err)
	}
	return data, nil
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// DecodePayload decodifica raw en el registro que declara shape.
func DecodePayload(shape PayloadShape, raw []byte) (Payload, error) {
	payload, err := NewPayload(shape)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: event carries no payload", ErrInvalidPayload)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing %s payload", ErrInvalidPayload, shape)
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return payload, nil
}
