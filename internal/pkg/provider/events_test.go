package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEvent = `{
  "id": "tx-1",
  "amount": 12.5,
  "currency": "GBP",
  "created": "2022-10-04T08:50:04.123Z",
  "programId": "prog-1",
  "brand": {"id": "brand-1"},
  "location": {"id": "loc-1"},
  "card": {"id": "card-1", "metadata": {"organizationId": "org-1", "customerId": "cust-1"}}
}`

func TestParseTransactionEvent(t *testing.T) {
	ev, err := ParseTransactionEvent([]byte(sampleEvent))
	require.NoError(t, err)

	assert.Equal(t, "tx-1", ev.ID)
	assert.Equal(t, 12.5, ev.Amount)
	assert.Equal(t, "org-1", ev.Card.Metadata.OrganizationID)
	assert.Equal(t, "cust-1", ev.Card.Metadata.CustomerID)
	assert.Equal(t, "brand-1", ev.Brand.ID)
	assert.Equal(t, time.Date(2022, 10, 4, 8, 50, 4, 123000000, time.UTC), ev.Created.UTC())
	assert.Empty(t, ev.OriginalTransactionID)
}

func TestParseTransactionEventRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"missing org":   `{"id":"tx","currency":"GBP","created":"2022-10-04T08:50:04Z","programId":"p","brand":{"id":"b"},"location":{"id":"l"},"card":{"id":"c","metadata":{"customerId":"cu"}}}`,
		"missing brand": `{"id":"tx","currency":"GBP","created":"2022-10-04T08:50:04Z","programId":"p","location":{"id":"l"},"card":{"id":"c","metadata":{"organizationId":"o","customerId":"cu"}}}`,
		"bad created":   `{"id":"tx","currency":"GBP","created":"yesterday","programId":"p","brand":{"id":"b"},"location":{"id":"l"},"card":{"id":"c","metadata":{"organizationId":"o","customerId":"cu"}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTransactionEvent([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}
