package grow

import (
	"crypto/hmac"
	"log/slog"
	"net/url"
	"strconv"
)

// WebhookPayload is a parsed gateway notification. The three custom
// fields carry back the user, tier and billing period the payment page
// was opened with. RawBody keeps the original form body for audit
// logging.
type WebhookPayload struct {
	TransactionID    string
	TransactionToken string
	TransactionCode  string
	Status           string
	Sum              float64
	Currency         string
	UserID           string
	Tier             string
	BillingPeriod    string
	RecurringID      string
	CustomerID       string
	Email            string
	FullName         string
	WebhookKey       string
	RawBody          string
}

// Succeeded reports whether the notification describes a successful
// charge.
func (p WebhookPayload) Succeeded() bool {
	return p.Status == "1"
}

// ParseWebhookPayload decodes a form-urlencoded webhook body. Parsing
// is forgiving: missing or malformed fields are left at their zero
// values so that verification and dispatch decide what to do with an
// incomplete notification.
func ParseWebhookPayload(body []byte) WebhookPayload {
	raw := string(body)
	values, err := url.ParseQuery(raw)
	if err != nil {
		return WebhookPayload{RawBody: raw}
	}

	sum, _ := strconv.ParseFloat(values.Get("sum"), 64)

	return WebhookPayload{
		TransactionID:    values.Get("transactionId"),
		TransactionToken: values.Get("transactionToken"),
		TransactionCode:  values.Get("transactionCode"),
		Status:           values.Get("status"),
		Sum:              sum,
		Currency:         values.Get("currency"),
		UserID:           values.Get("cField1"),
		Tier:             values.Get("cField2"),
		BillingPeriod:    values.Get("cField3"),
		RecurringID:      values.Get("recurringId"),
		CustomerID:       values.Get("customerId"),
		Email:            values.Get("email"),
		FullName:         values.Get("fullName"),
		WebhookKey:       values.Get("webhookKey"),
		RawBody:          raw,
	}
}

// VerifyWebhook checks the notification's shared secret in constant
// time. An empty configured secret always fails verification so that a
// misconfigured deployment rejects everything instead of accepting
// everything.
func (c *Client) VerifyWebhook(payload WebhookPayload) bool {
	return VerifyWebhook(payload, c.cfg.WebhookSecret, c.log)
}

// VerifyWebhook is the standalone form used by webhook handlers that
// hold a secret without a full gateway client.
func VerifyWebhook(payload WebhookPayload, secret string, log *slog.Logger) bool {
	if secret == "" {
		if log != nil {
			log.Warn("webhook secret is not configured, rejecting notification")
		}
		return false
	}
	return hmac.Equal([]byte(payload.WebhookKey), []byte(secret))
}
