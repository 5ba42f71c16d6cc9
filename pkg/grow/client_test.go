package grow_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/tier"
)

func testConfig(apiURL string) grow.Config {
	return grow.Config{
		APIURL:        apiURL,
		UserID:        "growAccount123",
		WebhookSecret: "s3cret",

		PageCodeSparkMonthly:      "sp-m",
		PageCodeSparkQuarterly:    "sp-q",
		PageCodeSparkYearly:       "sp-y",
		PageCodeMomentumMonthly:   "mo-m",
		PageCodeMomentumQuarterly: "mo-q",
		PageCodeMomentumYearly:    "mo-y",
		PageCodeSummitMonthly:     "su-m",
		PageCodeSummitQuarterly:   "su-q",
		PageCodeSummitYearly:      "su-y",
	}
}

func TestConfigPageCode(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://gateway.example.com")

	code, err := cfg.PageCode(tier.TierMomentum, tier.PeriodYearly)
	require.NoError(t, err)
	assert.Equal(t, "mo-y", code)

	cfg.PageCodeSummitMonthly = ""
	_, err = cfg.PageCode(tier.TierSummit, tier.PeriodMonthly)
	require.ErrorIs(t, err, grow.ErrPageCodeNotConfigured)
	require.ErrorIs(t, cfg.Validate(), grow.ErrPageCodeNotConfigured)
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	cfg := testConfig("https://gateway.example.com")
	cfg.WebhookSecret = ""
	_, err := grow.NewClient(cfg, tier.DefaultCatalog())
	require.ErrorIs(t, err, grow.ErrMissingConfiguration)

	_, err = grow.NewClient(testConfig("https://gateway.example.com"), nil)
	require.ErrorIs(t, err, grow.ErrMissingConfiguration)
}

func TestCreateRecurringPayment(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("sends form and returns redirect", func(t *testing.T) {
		t.Parallel()

		var got url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			got = r.PostForm
			assert.Equal(t, "/createPaymentProcess", r.URL.Path)
			w.Write([]byte(`{"status":1,"data":{"url":"https://pay.example.com/p/abc","processToken":"ptok"}}`))
		}))
		defer srv.Close()

		client, err := grow.NewClient(testConfig(srv.URL), tier.DefaultCatalog())
		require.NoError(t, err)

		res, err := client.CreateRecurringPayment(context.Background(),
			tier.TierMomentum, tier.PeriodMonthly, userID, grow.CallbackURLs{
				NotifyURL:  "https://app.example.com/webhooks/grow",
				SuccessURL: "https://app.example.com/ok",
				CancelURL:  "https://app.example.com/cancel",
			}, "dana@example.com", "Dana Levi")
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "https://pay.example.com/p/abc", res.RedirectURL)
		assert.Equal(t, "ptok", res.ProcessToken)

		assert.Equal(t, "mo-m", got.Get("pageCode"))
		assert.Equal(t, "growAccount123", got.Get("userId"))
		assert.Equal(t, "49.00", got.Get("sum"))
		assert.Equal(t, "0", got.Get("paymentNum"))
		assert.Equal(t, userID.String(), got.Get("cField1"))
		assert.Equal(t, "momentum", got.Get("cField2"))
		assert.Equal(t, "monthly", got.Get("cField3"))
		assert.Equal(t, "https://app.example.com/webhooks/grow", got.Get("notifyUrl"))
		assert.Equal(t, "dana@example.com", got.Get("email"))
	})

	t.Run("gateway decline is a failed result, not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":0,"err":{"id":402,"message":"card declined"}}`))
		}))
		defer srv.Close()

		client, err := grow.NewClient(testConfig(srv.URL), tier.DefaultCatalog())
		require.NoError(t, err)

		res, err := client.CreateRecurringPayment(context.Background(),
			tier.TierSpark, tier.PeriodMonthly, userID, grow.CallbackURLs{}, "", "")
		require.NoError(t, err)
		require.False(t, res.Success)
		assert.Equal(t, "card declined", res.Error)
	})

	t.Run("unreachable gateway is a failed result", func(t *testing.T) {
		t.Parallel()

		client, err := grow.NewClient(testConfig("http://127.0.0.1:1"), tier.DefaultCatalog())
		require.NoError(t, err)

		res, err := client.CreateRecurringPayment(context.Background(),
			tier.TierSpark, tier.PeriodMonthly, userID, grow.CallbackURLs{}, "", "")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})
}

func TestCreateOneTimeCharge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/chargeByToken", r.URL.Path)
		assert.Equal(t, "3.00", r.PostForm.Get("sum"))
		assert.Equal(t, "tok-1", r.PostForm.Get("transactionToken"))
		w.Write([]byte(`{"status":"1","data":{"transactionId":"tx-42"}}`))
	}))
	defer srv.Close()

	client, err := grow.NewClient(testConfig(srv.URL), tier.DefaultCatalog())
	require.NoError(t, err)

	res, err := client.CreateOneTimeCharge(context.Background(),
		tier.Money{Amount: 300, Currency: "ILS"}, "upgrade proration", uuid.New(), "tok-1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "tx-42", res.TransactionID)

	_, err = client.CreateOneTimeCharge(context.Background(),
		tier.Money{Amount: 300, Currency: "ILS"}, "upgrade proration", uuid.New(), "")
	require.ErrorIs(t, err, grow.ErrMissingConfiguration)
}

func TestApproveTransaction(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/approveTransaction", r.URL.Path)
		assert.Equal(t, "tx-42", r.PostForm.Get("transactionId"))
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	client, err := grow.NewClient(testConfig(srv.URL), tier.DefaultCatalog())
	require.NoError(t, err)

	res, err := client.ApproveTransaction(context.Background(), "tx-42", "tok-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
}
