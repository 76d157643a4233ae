package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/logger"
)

type couponSweepRepo interface {
	FindExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
}

// CouponSweepJobParams configure the expired coupon sweep.
type CouponSweepJobParams struct {
	Logger  *logger.Logger
	Coupons couponSweepRepo
}

// NewCouponSweepJob builds the job that deactivates coupons past their
// expiry so admin listings and lookups stop surfacing them as active.
func NewCouponSweepJob(params CouponSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &couponSweepJob{
		logg:    params.Logger,
		coupons: params.Coupons,
		now:     time.Now,
	}, nil
}

type couponSweepJob struct {
	logg    *logger.Logger
	coupons couponSweepRepo
	now     func() time.Time
}

func (j *couponSweepJob) Name() string { return "coupon-sweep" }

func (j *couponSweepJob) Run(ctx context.Context) error {
	expired, err := j.coupons.FindExpiredActive(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("query expired coupons: %w", err)
	}

	var errs error
	count := 0
	for i := range expired {
		coupon := expired[i]
		coupon.IsActive = false
		if updateErr := j.coupons.Update(ctx, &coupon); updateErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("deactivate coupon %s: %w", coupon.Code, updateErr))
			continue
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "expired": len(expired)})
	j.logg.Info(logCtx, "expired coupon sweep complete")
	return errs
}
