package grow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// Result is the uniform outcome of an outbound gateway call. Gateway
// failures are an expected, frequent outcome that calling code must
// render, so they surface as Success=false rather than a Go error;
// errors are reserved for configuration problems caught before any
// network traffic.
type Result struct {
	Success       bool
	Error         string
	RedirectURL   string
	TransactionID string
	ProcessToken  string
}

// CallbackURLs are the redirect and notification endpoints attached to a
// hosted payment page.
type CallbackURLs struct {
	NotifyURL  string
	SuccessURL string
	CancelURL  string
}

// Client is a thin, form-encoded client for the Grow payment gateway.
type Client struct {
	cfg        Config
	catalog    *tier.Catalog
	httpClient *http.Client
	log        *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger sets the logger. Defaults to slog.Default().
func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient validates the configuration and creates a Client.
func NewClient(cfg Config, catalog *tier.Catalog, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, errors.Join(ErrMissingConfiguration, errors.New("tier catalog is required"))
	}

	c := &Client{
		cfg:        cfg,
		catalog:    catalog,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// growResponse is the gateway's JSON envelope. Status "1" means success;
// anything else carries a message in err.
type growResponse struct {
	Status json.Number `json:"status"`
	Err    struct {
		ID      json.Number `json:"id"`
		Message string      `json:"message"`
	} `json:"err"`
	Data struct {
		URL           string `json:"url"`
		TransactionID string `json:"transactionId"`
		ProcessToken  string `json:"processToken"`
	} `json:"data"`
}

// CreateRecurringPayment opens a hosted recurring payment page for the
// tier and billing period. The user ID, tier and period travel in the
// three passthrough fields the gateway echoes back on every webhook.
func (c *Client) CreateRecurringPayment(ctx context.Context, t tier.Tier, p tier.BillingPeriod, userID uuid.UUID, urls CallbackURLs, email, fullName string) (*Result, error) {
	pageCode, err := c.cfg.PageCode(t, p)
	if err != nil {
		return nil, err
	}
	price, err := c.catalog.Price(t, p)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("pageCode", pageCode)
	form.Set("userId", c.cfg.UserID)
	form.Set("sum", formatSum(price.Amount))
	form.Set("paymentNum", "0") // 0 marks an open-ended recurring charge
	form.Set("cField1", userID.String())
	form.Set("cField2", string(t))
	form.Set("cField3", string(p))
	form.Set("notifyUrl", urls.NotifyURL)
	form.Set("successUrl", urls.SuccessURL)
	form.Set("cancelUrl", urls.CancelURL)
	if email != "" {
		form.Set("email", email)
	}
	if fullName != "" {
		form.Set("fullName", fullName)
	}

	resp, err := c.post(ctx, "/createPaymentProcess", form)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}
	if !resp.ok() {
		return resp.failure(), nil
	}
	if resp.Data.URL == "" {
		return &Result{Success: false, Error: "gateway returned no redirect url"}, nil
	}
	return &Result{
		Success:      true,
		RedirectURL:  resp.Data.URL,
		ProcessToken: resp.Data.ProcessToken,
	}, nil
}

// CreateOneTimeCharge charges a previously tokenized payment method,
// typically for the prorated amount of a mid-period upgrade.
func (c *Client) CreateOneTimeCharge(ctx context.Context, amount tier.Money, description string, userID uuid.UUID, transactionToken string) (*Result, error) {
	if transactionToken == "" {
		return nil, errors.Join(ErrMissingConfiguration, errors.New("transaction token is required"))
	}

	form := url.Values{}
	form.Set("userId", c.cfg.UserID)
	form.Set("sum", formatSum(amount.Amount))
	form.Set("description", description)
	form.Set("transactionToken", transactionToken)
	form.Set("cField1", userID.String())

	resp, err := c.post(ctx, "/chargeByToken", form)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}
	if !resp.ok() {
		return resp.failure(), nil
	}
	return &Result{
		Success:       true,
		TransactionID: resp.Data.TransactionID,
	}, nil
}

// ApproveTransaction finalizes a transaction the gateway left pending.
func (c *Client) ApproveTransaction(ctx context.Context, transactionID, transactionToken string) (*Result, error) {
	form := url.Values{}
	form.Set("userId", c.cfg.UserID)
	form.Set("transactionId", transactionID)
	form.Set("transactionToken", transactionToken)

	resp, err := c.post(ctx, "/approveTransaction", form)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}
	if !resp.ok() {
		return resp.failure(), nil
	}
	return &Result{Success: true, TransactionID: transactionID}, nil
}

func (r *growResponse) ok() bool {
	return r.Status.String() == "1"
}

func (r *growResponse) failure() *Result {
	msg := r.Err.Message
	if msg == "" {
		msg = fmt.Sprintf("gateway returned status %s", r.Status.String())
	}
	return &Result{Success: false, Error: msg}
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*growResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.APIURL, "/")+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrRequestFailed, httpResp.StatusCode)
	}

	var resp growResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	return &resp, nil
}

// formatSum renders agorot as the decimal shekel string the gateway
// expects, e.g. 4900 -> "49.00".
func formatSum(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
