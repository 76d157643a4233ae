package db

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func testClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&txRow{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return &Client{conn: conn}
}

func TestWithTxCommits(t *testing.T) {
	client := testClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&txRow{Name: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	var count int64
	if err := client.DB().Model(&txRow{}).Where("name = ?", "kept").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := testClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&txRow{Name: "discarded"}).Error; err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}

	var count int64
	if err := client.DB().Model(&txRow{}).Where("name = ?", "discarded").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
	if !IsUniqueViolation(fmt.Errorf("UNIQUE constraint failed: coupons.code"), "") {
		t.Fatal("sqlite unique violation should match")
	}
	if !IsUniqueViolation(fmt.Errorf(`duplicate key value violates unique constraint "coupons_code_key"`), "coupons_code_key") {
		t.Fatal("named constraint should match")
	}
}
