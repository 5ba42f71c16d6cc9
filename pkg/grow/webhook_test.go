package grow_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/tier"
)

func TestParseWebhookPayload(t *testing.T) {
	t.Parallel()

	t.Run("full notification", func(t *testing.T) {
		t.Parallel()

		form := url.Values{
			"transactionId":    {"tx-1"},
			"transactionToken": {"tok-1"},
			"transactionCode":  {"code-1"},
			"status":           {"1"},
			"sum":              {"49.00"},
			"currency":         {"ILS"},
			"cField1":          {"6a9f1e34-9a3c-4d6f-8a6e-0e9c1b2d3f40"},
			"cField2":          {"momentum"},
			"cField3":          {"monthly"},
			"recurringId":      {"rec-7"},
			"customerId":       {"cust-9"},
			"email":            {"dana@example.com"},
			"webhookKey":       {"s3cret"},
		}
		body := form.Encode()

		p := grow.ParseWebhookPayload([]byte(body))
		assert.Equal(t, "tx-1", p.TransactionID)
		assert.Equal(t, "code-1", p.TransactionCode)
		assert.Equal(t, 49.0, p.Sum)
		assert.Equal(t, "momentum", p.Tier)
		assert.Equal(t, "monthly", p.BillingPeriod)
		assert.Equal(t, "rec-7", p.RecurringID)
		assert.Equal(t, body, p.RawBody)
		assert.True(t, p.Succeeded())
	})

	t.Run("never errors on garbage", func(t *testing.T) {
		t.Parallel()

		p := grow.ParseWebhookPayload([]byte("%zz;&=broken"))
		assert.Equal(t, "%zz;&=broken", p.RawBody)
		assert.False(t, p.Succeeded())

		p = grow.ParseWebhookPayload(nil)
		assert.Empty(t, p.TransactionCode)
		assert.Zero(t, p.Sum)
	})

	t.Run("malformed sum defaults to zero", func(t *testing.T) {
		t.Parallel()

		p := grow.ParseWebhookPayload([]byte("status=0&sum=not-a-number"))
		assert.Zero(t, p.Sum)
		assert.False(t, p.Succeeded())
	})
}

func TestVerifyWebhook(t *testing.T) {
	t.Parallel()

	client, err := grow.NewClient(testConfig("https://gateway.example.com"), tier.DefaultCatalog())
	require.NoError(t, err)

	assert.True(t, client.VerifyWebhook(grow.WebhookPayload{WebhookKey: "s3cret"}))
	assert.False(t, client.VerifyWebhook(grow.WebhookPayload{WebhookKey: "wrong"}))
	assert.False(t, client.VerifyWebhook(grow.WebhookPayload{}))

	// an unset secret rejects every notification, including an empty key
	assert.False(t, grow.VerifyWebhook(grow.WebhookPayload{WebhookKey: ""}, "", nil))
	assert.False(t, grow.VerifyWebhook(grow.WebhookPayload{WebhookKey: "anything"}, "", nil))
}
