package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/logger"
)

type fakeCouponRepo struct {
	expired   []models.Coupon
	cutoff    time.Time
	updated   []models.Coupon
	updateErr map[string]error
}

func (f *fakeCouponRepo) FindExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Coupon, error) {
	f.cutoff = cutoff
	return f.expired, nil
}

func (f *fakeCouponRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	if err := f.updateErr[coupon.Code]; err != nil {
		return err
	}
	f.updated = append(f.updated, *coupon)
	return nil
}

func newCouponSweepJobTest(t *testing.T, repo *fakeCouponRepo) *couponSweepJob {
	t.Helper()
	jobIface, err := NewCouponSweepJob(CouponSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Coupons: repo,
	})
	if err != nil {
		t.Fatalf("NewCouponSweepJob: %v", err)
	}
	job, ok := jobIface.(*couponSweepJob)
	if !ok {
		t.Fatalf("expected couponSweepJob, got %T", jobIface)
	}
	return job
}

func TestCouponSweepDeactivatesExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)
	repo := &fakeCouponRepo{expired: []models.Coupon{
		{Code: "TET2026", IsActive: true, ExpiresAt: now.Add(-time.Hour)},
	}}
	job := newCouponSweepJobTest(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.cutoff.Equal(now) {
		t.Fatalf("unexpected cutoff: %s", repo.cutoff)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(repo.updated))
	}
	if repo.updated[0].IsActive {
		t.Fatal("expected coupon to be deactivated")
	}
}

func TestCouponSweepCollectsPerCouponErrors(t *testing.T) {
	repo := &fakeCouponRepo{
		expired: []models.Coupon{
			{Code: "BROKEN", IsActive: true},
			{Code: "HEALTHY", IsActive: true},
		},
		updateErr: map[string]error{"BROKEN": errors.New("deadlock detected")},
	}
	job := newCouponSweepJobTest(t, repo)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "BROKEN") {
		t.Fatalf("expected error to name the broken coupon, got: %v", err)
	}
	if len(repo.updated) != 1 || repo.updated[0].Code != "HEALTHY" {
		t.Fatalf("expected the healthy coupon to be swept, updated %d", len(repo.updated))
	}
}
