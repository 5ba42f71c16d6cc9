package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumhq/billingkit/pkg/pg"
	"github.com/momentumhq/billingkit/pkg/tier"
)

// PgStore implements Store and EventStore on a PostgreSQL pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore. Panics on a nil pool to fail fast.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	if pool == nil {
		panic("subscription: pgxpool is required")
	}
	return &PgStore{pool: pool}
}

// subscriptionRow is the persisted snake_case shape. The domain model and
// all business logic only ever see the camelCase Subscription; conversion
// lives in toDomain/rowFromDomain and nowhere else.
type subscriptionRow struct {
	UserID                  uuid.UUID
	Tier                    *string
	BillingPeriod           string
	Status                  string
	CurrentPeriodStart      time.Time
	CurrentPeriodEnd        time.Time
	CancelledAt             *time.Time
	CancellationEffectiveAt *time.Time
	ScheduledTier           *string
	ScheduledBillingPeriod  *string
	PendingTier             *string
	PendingBillingPeriod    *string
	GrowTransactionToken    string
	GrowRecurringID         string
	GrowLastTransactionCode string
	MorningCustomerID       string
	UsageApplications       int64
	UsageTailoredCVs        int64
	UsageInterviewPreps     int64
	UsageCompensationPlans  int64
	UsageJobDiscoveries     int64
	UsageFileUploads        int64
	LastResetAt             time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (r *subscriptionRow) toDomain() *Subscription {
	sub := &Subscription{
		UserID:                  r.UserID,
		BillingPeriod:           tier.BillingPeriod(r.BillingPeriod),
		Status:                  Status(r.Status),
		CurrentPeriodStart:      r.CurrentPeriodStart,
		CurrentPeriodEnd:        r.CurrentPeriodEnd,
		CancelledAt:             r.CancelledAt,
		CancellationEffectiveAt: r.CancellationEffectiveAt,
		GrowTransactionToken:    r.GrowTransactionToken,
		GrowRecurringID:         r.GrowRecurringID,
		GrowLastTransactionCode: r.GrowLastTransactionCode,
		MorningCustomerID:       r.MorningCustomerID,
		LastResetAt:             r.LastResetAt,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		Usage: Usage{
			tier.ResourceApplications:      r.UsageApplications,
			tier.ResourceTailoredCVs:       r.UsageTailoredCVs,
			tier.ResourceInterviewPreps:    r.UsageInterviewPreps,
			tier.ResourceCompensationPlans: r.UsageCompensationPlans,
			tier.ResourceJobDiscoveries:    r.UsageJobDiscoveries,
			tier.ResourceFileUploads:       r.UsageFileUploads,
		},
	}
	sub.Tier = tierPtr(r.Tier)
	sub.ScheduledTier = tierPtr(r.ScheduledTier)
	sub.PendingTier = tierPtr(r.PendingTier)
	sub.ScheduledBillingPeriod = periodPtr(r.ScheduledBillingPeriod)
	sub.PendingBillingPeriod = periodPtr(r.PendingBillingPeriod)
	return sub
}

func rowFromDomain(sub *Subscription) *subscriptionRow {
	usage := sub.Usage
	if usage == nil {
		usage = ZeroUsage()
	}
	return &subscriptionRow{
		UserID:                  sub.UserID,
		Tier:                    strPtrFromTier(sub.Tier),
		BillingPeriod:           string(sub.BillingPeriod),
		Status:                  string(sub.Status),
		CurrentPeriodStart:      sub.CurrentPeriodStart,
		CurrentPeriodEnd:        sub.CurrentPeriodEnd,
		CancelledAt:             sub.CancelledAt,
		CancellationEffectiveAt: sub.CancellationEffectiveAt,
		ScheduledTier:           strPtrFromTier(sub.ScheduledTier),
		ScheduledBillingPeriod:  strPtrFromPeriod(sub.ScheduledBillingPeriod),
		PendingTier:             strPtrFromTier(sub.PendingTier),
		PendingBillingPeriod:    strPtrFromPeriod(sub.PendingBillingPeriod),
		GrowTransactionToken:    sub.GrowTransactionToken,
		GrowRecurringID:         sub.GrowRecurringID,
		GrowLastTransactionCode: sub.GrowLastTransactionCode,
		MorningCustomerID:       sub.MorningCustomerID,
		UsageApplications:       usage[tier.ResourceApplications],
		UsageTailoredCVs:        usage[tier.ResourceTailoredCVs],
		UsageInterviewPreps:     usage[tier.ResourceInterviewPreps],
		UsageCompensationPlans:  usage[tier.ResourceCompensationPlans],
		UsageJobDiscoveries:     usage[tier.ResourceJobDiscoveries],
		UsageFileUploads:        usage[tier.ResourceFileUploads],
		LastResetAt:             sub.LastResetAt,
		CreatedAt:               sub.CreatedAt,
		UpdatedAt:               sub.UpdatedAt,
	}
}

func tierPtr(s *string) *tier.Tier {
	if s == nil {
		return nil
	}
	t := tier.Tier(*s)
	return &t
}

func periodPtr(s *string) *tier.BillingPeriod {
	if s == nil {
		return nil
	}
	p := tier.BillingPeriod(*s)
	return &p
}

func strPtrFromTier(t *tier.Tier) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func strPtrFromPeriod(p *tier.BillingPeriod) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

const subscriptionColumns = `user_id, tier, billing_period, status,
	current_period_start, current_period_end,
	cancelled_at, cancellation_effective_at,
	scheduled_tier, scheduled_billing_period,
	pending_tier, pending_billing_period,
	grow_transaction_token, grow_recurring_id, grow_last_transaction_code, morning_customer_id,
	usage_applications, usage_tailored_cvs, usage_interview_preps,
	usage_compensation_plans, usage_job_discoveries, usage_file_uploads,
	last_reset_at, created_at, updated_at`

func (s *PgStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE user_id = $1`

	var r subscriptionRow
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&r.UserID, &r.Tier, &r.BillingPeriod, &r.Status,
		&r.CurrentPeriodStart, &r.CurrentPeriodEnd,
		&r.CancelledAt, &r.CancellationEffectiveAt,
		&r.ScheduledTier, &r.ScheduledBillingPeriod,
		&r.PendingTier, &r.PendingBillingPeriod,
		&r.GrowTransactionToken, &r.GrowRecurringID, &r.GrowLastTransactionCode, &r.MorningCustomerID,
		&r.UsageApplications, &r.UsageTailoredCVs, &r.UsageInterviewPreps,
		&r.UsageCompensationPlans, &r.UsageJobDiscoveries, &r.UsageFileUploads,
		&r.LastResetAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrFailedToRead, err)
	}

	return r.toDomain(), nil
}

func (s *PgStore) Save(ctx context.Context, sub *Subscription) error {
	r := rowFromDomain(sub)

	query := `INSERT INTO user_subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			billing_period = EXCLUDED.billing_period,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancelled_at = EXCLUDED.cancelled_at,
			cancellation_effective_at = EXCLUDED.cancellation_effective_at,
			scheduled_tier = EXCLUDED.scheduled_tier,
			scheduled_billing_period = EXCLUDED.scheduled_billing_period,
			pending_tier = EXCLUDED.pending_tier,
			pending_billing_period = EXCLUDED.pending_billing_period,
			grow_transaction_token = EXCLUDED.grow_transaction_token,
			grow_recurring_id = EXCLUDED.grow_recurring_id,
			grow_last_transaction_code = EXCLUDED.grow_last_transaction_code,
			morning_customer_id = EXCLUDED.morning_customer_id,
			usage_applications = EXCLUDED.usage_applications,
			usage_tailored_cvs = EXCLUDED.usage_tailored_cvs,
			usage_interview_preps = EXCLUDED.usage_interview_preps,
			usage_compensation_plans = EXCLUDED.usage_compensation_plans,
			usage_job_discoveries = EXCLUDED.usage_job_discoveries,
			usage_file_uploads = EXCLUDED.usage_file_uploads,
			last_reset_at = EXCLUDED.last_reset_at,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		r.UserID, r.Tier, r.BillingPeriod, r.Status,
		r.CurrentPeriodStart, r.CurrentPeriodEnd,
		r.CancelledAt, r.CancellationEffectiveAt,
		r.ScheduledTier, r.ScheduledBillingPeriod,
		r.PendingTier, r.PendingBillingPeriod,
		r.GrowTransactionToken, r.GrowRecurringID, r.GrowLastTransactionCode, r.MorningCustomerID,
		r.UsageApplications, r.UsageTailoredCVs, r.UsageInterviewPreps,
		r.UsageCompensationPlans, r.UsageJobDiscoveries, r.UsageFileUploads,
		r.LastResetAt, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func (s *PgStore) ListExpirable(ctx context.Context, now time.Time) ([]*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions
		WHERE status <> 'expired'
		  AND tier IS NOT NULL
		  AND COALESCE(cancellation_effective_at, current_period_end) <= $1`

	rows, err := s.pool.Query(ctx, query, now)
	if err != nil {
		return nil, errors.Join(ErrFailedToRead, err)
	}
	defer rows.Close()

	var out []*Subscription
	for rows.Next() {
		var r subscriptionRow
		if err := rows.Scan(
			&r.UserID, &r.Tier, &r.BillingPeriod, &r.Status,
			&r.CurrentPeriodStart, &r.CurrentPeriodEnd,
			&r.CancelledAt, &r.CancellationEffectiveAt,
			&r.ScheduledTier, &r.ScheduledBillingPeriod,
			&r.PendingTier, &r.PendingBillingPeriod,
			&r.GrowTransactionToken, &r.GrowRecurringID, &r.GrowLastTransactionCode, &r.MorningCustomerID,
			&r.UsageApplications, &r.UsageTailoredCVs, &r.UsageInterviewPreps,
			&r.UsageCompensationPlans, &r.UsageJobDiscoveries, &r.UsageFileUploads,
			&r.LastResetAt, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, errors.Join(ErrFailedToRead, err)
		}
		out = append(out, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrFailedToRead, err)
	}
	return out, nil
}

// usageColumn whitelists the counter column per resource. The column name
// is interpolated into SQL, so it must never come from input directly.
func usageColumn(res tier.Resource) (string, error) {
	switch res {
	case tier.ResourceApplications:
		return "usage_applications", nil
	case tier.ResourceTailoredCVs:
		return "usage_tailored_cvs", nil
	case tier.ResourceInterviewPreps:
		return "usage_interview_preps", nil
	case tier.ResourceCompensationPlans:
		return "usage_compensation_plans", nil
	case tier.ResourceJobDiscoveries:
		return "usage_job_discoveries", nil
	case tier.ResourceFileUploads:
		return "usage_file_uploads", nil
	default:
		return "", fmt.Errorf("%w: %q", tier.ErrInvalidResource, res)
	}
}

func (s *PgStore) IncrementUsage(ctx context.Context, userID uuid.UUID, res tier.Resource) error {
	col, err := usageColumn(res)
	if err != nil {
		return err
	}

	query := `UPDATE user_subscriptions SET ` + col + ` = ` + col + ` + 1, updated_at = now()
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Append writes one audit record. The table has no update or delete path.
func (s *PgStore) Append(ctx context.Context, rec Record) error {
	query := `INSERT INTO subscription_events (id, user_id, kind, meta, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query, rec.ID, rec.UserID, string(rec.Kind), rec.Meta, rec.CreatedAt)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}
