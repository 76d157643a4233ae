package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/internal/orders"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	"github.com/saigonmart/backend/pkg/logger"
)

// Pending orders nobody confirmed within a week get auto-cancelled so the
// back office queue stays honest.
const pendingOrderTTLDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pendingOrderReader interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type transactionalOrderRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
}

type orderRepoFactory func(tx *gorm.DB) transactionalOrderRepo

func defaultOrderRepo(tx *gorm.DB) transactionalOrderRepo {
	return orders.NewRepository(tx)
}

// OrderTTLJobParams configure the stale pending order sweep.
type OrderTTLJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	PendingReader pendingOrderReader
	RepoFactory   orderRepoFactory
}

// NewOrderTTLJob builds the job that cancels pending orders past their TTL.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultOrderRepo
	}
	return &orderTTLJob{
		logg:          params.Logger,
		db:            params.DB,
		pendingReader: params.PendingReader,
		repoFactory:   repoFactory,
		now:           time.Now,
	}, nil
}

type orderTTLJob struct {
	logg          *logger.Logger
	db            txRunner
	pendingReader pendingOrderReader
	repoFactory   orderRepoFactory
	now           func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

// Run cancels every pending order older than the TTL. Per-order failures
// are collected so one broken row does not stall the rest of the sweep.
func (j *orderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-pendingOrderTTLDays * 24 * time.Hour)
	stale, err := j.pendingReader.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	count := 0
	for _, order := range stale {
		if cancelErr := j.cancelOrder(ctx, order.ID); cancelErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("cancel order %s: %w", order.ID, cancelErr))
			continue
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "stale": len(stale)})
	j.logg.Info(logCtx, "stale order sweep complete")
	return errs
}

func (j *orderTTLJob) cancelOrder(ctx context.Context, orderID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		// reloaded inside the tx: an admin may have confirmed it meanwhile
		if current.Status != enums.OrderStatusPending {
			return nil
		}
		current.Status = enums.OrderStatusCancelled
		return repo.Save(ctx, current)
	})
}
