package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Webhook event types, as they appear in the callback path.
const (
	EventTransactionAuth   = "transaction.auth"
	EventTransactionRefund = "transaction.refund"
)

// ErrMalformedEvent is returned when a delivery body cannot be decoded or
// lacks a required field.
var ErrMalformedEvent = errors.New("malformed event")

type Ref struct {
	ID string `json:"id" validate:"required"`
}

// CardMetadata carries the Platform identifiers attached to a card when it
// was enrolled.
type CardMetadata struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	CustomerID     string `json:"customerId" validate:"required"`
}

type Card struct {
	ID       string       `json:"id" validate:"required"`
	Metadata CardMetadata `json:"metadata"`
}

// TransactionEvent is the body of a transaction webhook.
type TransactionEvent struct {
	ID                    string    `json:"id" validate:"required"`
	Amount                float64   `json:"amount"`
	Currency              string    `json:"currency" validate:"required"`
	Created               time.Time `json:"created" validate:"required"`
	ProgramID             string    `json:"programId" validate:"required"`
	Brand                 Ref       `json:"brand"`
	Location              Ref       `json:"location"`
	Card                  Card      `json:"card"`
	OriginalTransactionID string    `json:"originalTransactionId,omitempty"`
}

var validate = validator.New()

// ParseTransactionEvent decodes and validates a webhook body.
func ParseTransactionEvent(body []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := validate.Struct(&ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return &ev, nil
}
