package dsm

import (
	"encoding/json"
	"fmt"
)

// Envelope is the JSON wrapper around every response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
}

// EnvelopeError is the error object of a failed response.
type EnvelopeError struct {
	Code   int           `json:"code"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// Outcome classifies a decoded response.
type Outcome string

// Decode outcomes.
const (
	OutcomeSuccess      Outcome = "success"
	OutcomeTypedError   Outcome = "typed_error"
	OutcomeGenericError Outcome = "generic_error"
	OutcomeInvalid      Outcome = "invalid"
)

// ClassifyError maps an error returned by Decode to its outcome.
func ClassifyError(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	if apiErr, ok := err.(*APIError); ok { //nolint:errorlint // Decode returns it unwrapped
		if apiErr.Taxonomy == nil {
			return OutcomeGenericError
		}

		return OutcomeTypedError
	}

	return OutcomeInvalid
}

// ParseEnvelope parses the envelope without decoding its data.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var envelope Envelope

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return &envelope, nil
}

// Decode unpacks a response body. On success it returns the data decoded
// into T, or a zero T when the server sent no data. On failure it resolves
// the error code through taxonomy, falling back to Common when taxonomy is
// nil. Per-item details are attached to the returned *APIError in every case.
func Decode[T any](body []byte, taxonomy *Taxonomy) (*T, error) {
	envelope, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	if !envelope.Success {
		if envelope.Error == nil {
			return nil, fmt.Errorf("%w: failure without error object", ErrInvalidResponse)
		}

		if taxonomy == nil {
			taxonomy = Common
		}

		return nil, taxonomy.Err(envelope.Error.Code, envelope.Error.Errors...)
	}

	result := new(T)

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return result, nil
	}

	err = json.Unmarshal(envelope.Data, result)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data: %w", ErrInvalidResponse, err)
	}

	return result, nil
}
