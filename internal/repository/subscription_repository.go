package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
)

// Subscription mirrors the 'subscriptions' table: one row per seller
// holding the current tier.  The tier survives restarts so a paid upgrade
// is not lost when the server bounces.
type Subscription struct {
	UserID    uint64
	Tier      model.Tier
	UpdatedAt time.Time
}

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Get returns the seller's subscription.
func (r *SubscriptionRepo) Get(ctx context.Context, userID uint64) (Subscription, error) {
	var (
		s    Subscription
		tier string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, tier, updated_at FROM subscriptions WHERE user_id=? LIMIT 1",
		userID).Scan(&s.UserID, &tier, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	t, ok := model.ParseTier(tier)
	if !ok {
		return Subscription{}, errors.New("unknown tier in subscriptions table: " + tier)
	}
	s.Tier = t
	return s, nil
}

// GetAny returns the most recently updated subscription row, used at boot
// to restore the tier for a single-seller install before anyone logs in.
func (r *SubscriptionRepo) GetAny(ctx context.Context) (Subscription, error) {
	var (
		s    Subscription
		tier string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, tier, updated_at FROM subscriptions ORDER BY updated_at DESC LIMIT 1").
		Scan(&s.UserID, &tier, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	t, ok := model.ParseTier(tier)
	if !ok {
		return Subscription{}, errors.New("unknown tier in subscriptions table: " + tier)
	}
	s.Tier = t
	return s, nil
}

// Save upserts the seller's tier.
func (r *SubscriptionRepo) Save(ctx context.Context, userID uint64, tier model.Tier) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (user_id, tier) VALUES (?,?) "+
			"ON DUPLICATE KEY UPDATE tier=VALUES(tier), updated_at=NOW()",
		userID, string(tier))
	return err
}
