package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "test:session:" + accessID
}

func testManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Minute}, store
}

func TestSessionLifecycle(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	if err := m.Create(ctx, "jti-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := m.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist")
	}

	if err := m.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = m.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("has after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone")
	}
}

func TestSessionRequiresAccessID(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	if err := m.Create(ctx, " "); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := m.HasSession(ctx, ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if err := m.Revoke(ctx, ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
