package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/modules/billing"
	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/subscription"
	"github.com/momentumhq/billingkit/pkg/tier"
	"github.com/momentumhq/billingkit/pkg/usage"
)

type fakeGateway struct {
	recurring  *grow.Result
	charge     *grow.Result
	chargedSum int64
}

func (f *fakeGateway) CreateRecurringPayment(_ context.Context, t tier.Tier, _ tier.BillingPeriod, _ uuid.UUID, _ grow.CallbackURLs, _, _ string) (*grow.Result, error) {
	if _, err := tier.DefaultCatalog().Config(t); err != nil {
		return nil, err
	}
	return f.recurring, nil
}

func (f *fakeGateway) CreateOneTimeCharge(_ context.Context, amount tier.Money, _ string, _ uuid.UUID, _ string) (*grow.Result, error) {
	f.chargedSum = amount.Amount
	return f.charge, nil
}

type fixture struct {
	router  http.Handler
	manager *subscription.Manager
	gateway *fakeGateway
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := uuid.New()
	manager := subscription.NewManager(
		subscription.NewMemoryStore(),
		subscription.NewMemoryEventStore(),
		tier.DefaultCatalog())

	gateway := &fakeGateway{
		recurring: &grow.Result{Success: true, RedirectURL: "https://pay.example.com/p/1"},
		charge:    &grow.Result{Success: true, TransactionID: "tx-1"},
	}

	svc := billing.NewService(manager, gateway, billing.Config{
		NotifyURL:  "https://app.example.com/billing/webhooks/grow",
		SuccessURL: "https://app.example.com/ok",
		CancelURL:  "https://app.example.com/cancel",
	}, nil)

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(usage.SetUserIDToContext(r.Context(), userID)))
		})
	}

	return &fixture{
		router:  billing.Router(billing.RouterOptions{Service: svc, Authenticate: authenticate}),
		manager: manager,
		gateway: gateway,
		userID:  userID,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/checkout", `{"tier":"momentum","billing_period":"monthly"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://pay.example.com/p/1")

	rec = f.do(t, http.MethodPost, "/checkout", `{"tier":"platinum","billing_period":"monthly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/checkout", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSubscription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// no row yet: free plan, not an error
	rec := f.do(t, http.MethodGet, "/subscription", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var free map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &free))
	assert.Nil(t, free["tier"])

	require.NoError(t, f.manager.ActivateSubscription(context.Background(), f.userID,
		tier.TierMomentum, tier.PeriodMonthly, nil))

	rec = f.do(t, http.MethodGet, "/subscription", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "momentum", got["tier"])
	assert.Equal(t, "active", got["status"])
}

func TestUpgradeChargesProration(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manager.ActivateSubscription(ctx, f.userID,
		tier.TierMomentum, tier.PeriodMonthly,
		&subscription.GatewayData{TransactionToken: "tok-1"}))

	rec := f.do(t, http.MethodPost, "/upgrade", `{"tier":"summit"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	prorated := int64(resp["prorated_amount"].(float64))
	assert.Positive(t, prorated)
	assert.Equal(t, prorated, f.gateway.chargedSum)

	// downgrade attempt through the upgrade endpoint is rejected
	rec = f.do(t, http.MethodPost, "/upgrade", `{"tier":"spark"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDowngradeAndScheduledChange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manager.ActivateSubscription(ctx, f.userID,
		tier.TierSummit, tier.PeriodMonthly, nil))

	rec := f.do(t, http.MethodPost, "/downgrade", `{"tier":"spark"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "effective_at")

	rec = f.do(t, http.MethodDelete, "/scheduled-change", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// nothing scheduled anymore
	rec = f.do(t, http.MethodDelete, "/scheduled-change", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(t, http.MethodPost, "/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, f.manager.ActivateSubscription(ctx, f.userID,
		tier.TierMomentum, tier.PeriodMonthly, nil))

	rec = f.do(t, http.MethodPost, "/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnauthenticated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	// router without the auth middleware
	svc := billing.NewService(f.manager, f.gateway, billing.Config{
		NotifyURL: "n", SuccessURL: "s", CancelURL: "c",
	}, nil)
	router := billing.Router(billing.RouterOptions{Service: svc})

	req := httptest.NewRequest(http.MethodGet, "/subscription", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
