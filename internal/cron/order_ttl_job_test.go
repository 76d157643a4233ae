package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	"github.com/saigonmart/backend/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakePendingReader struct {
	orders []models.Order
	cutoff time.Time
}

func (f *fakePendingReader) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	f.cutoff = cutoff
	return f.orders, nil
}

type fakeOrderRepo struct {
	byID    map[uuid.UUID]*models.Order
	saved   []models.Order
	saveErr map[uuid.UUID]error
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := f.byID[id]; ok {
		copy := *order
		return &copy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *models.Order) error {
	if err := f.saveErr[order.ID]; err != nil {
		return err
	}
	f.saved = append(f.saved, *order)
	return nil
}

func newOrderTTLJobTest(t *testing.T, reader *fakePendingReader, repo *fakeOrderRepo) *orderTTLJob {
	t.Helper()
	jobIface, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		DB:            fakeTxRunner{},
		PendingReader: reader,
		RepoFactory:   func(tx *gorm.DB) transactionalOrderRepo { return repo },
	})
	if err != nil {
		t.Fatalf("NewOrderTTLJob: %v", err)
	}
	job, ok := jobIface.(*orderTTLJob)
	if !ok {
		t.Fatalf("expected orderTTLJob, got %T", jobIface)
	}
	return job
}

func TestOrderTTLJobCancelsStalePendingOrders(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	stale := models.Order{
		ID:       uuid.New(),
		Status:   enums.OrderStatusPending,
		PlacedAt: now.Add(-9 * 24 * time.Hour),
	}
	reader := &fakePendingReader{orders: []models.Order{stale}}
	repo := &fakeOrderRepo{byID: map[uuid.UUID]*models.Order{stale.ID: &stale}}
	job := newOrderTTLJobTest(t, reader, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantCutoff := now.Add(-pendingOrderTTLDays * 24 * time.Hour)
	if !reader.cutoff.Equal(wantCutoff) {
		t.Fatalf("unexpected cutoff: %s", reader.cutoff)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(repo.saved))
	}
	if repo.saved[0].Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.saved[0].Status)
	}
}

func TestOrderTTLJobSkipsOrdersConfirmedMeanwhile(t *testing.T) {
	stale := models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	confirmed := stale
	confirmed.Status = enums.OrderStatusConfirmed
	reader := &fakePendingReader{orders: []models.Order{stale}}
	// the tx reload sees the order already confirmed by an admin
	repo := &fakeOrderRepo{byID: map[uuid.UUID]*models.Order{stale.ID: &confirmed}}
	job := newOrderTTLJobTest(t, reader, repo)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("expected no saves, got %d", len(repo.saved))
	}
}

func TestOrderTTLJobCollectsPerOrderErrors(t *testing.T) {
	broken := models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	healthy := models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	reader := &fakePendingReader{orders: []models.Order{broken, healthy}}
	repo := &fakeOrderRepo{
		byID: map[uuid.UUID]*models.Order{
			broken.ID:  &broken,
			healthy.ID: &healthy,
		},
		saveErr: map[uuid.UUID]error{broken.ID: errors.New("connection reset")},
	}
	job := newOrderTTLJobTest(t, reader, repo)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !strings.Contains(err.Error(), broken.ID.String()) {
		t.Fatalf("expected error to name the broken order, got: %v", err)
	}
	// the healthy order was still swept
	if len(repo.saved) != 1 || repo.saved[0].ID != healthy.ID {
		t.Fatalf("expected the healthy order to be cancelled, saved %d", len(repo.saved))
	}
}
