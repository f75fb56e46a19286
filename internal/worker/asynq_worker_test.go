package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/config"
	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/provider"
	"github.com/ysongh/SmartSpendGift/internal/queue"
	"github.com/ysongh/SmartSpendGift/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB, *config.Config) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CardEvent{}, &models.CustodyTransfer{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	container := &provider.Container{
		Config:              cfg,
		CardEventRepo:       repository.NewCardEventRepository(db),
		CustodyTransferRepo: repository.NewCustodyTransferRepository(db),
	}
	return NewConsumer(container), db, cfg
}

func TestHandleCustodyReconcileMarksStalePendingFailed(t *testing.T) {
	consumer, db, _ := setupConsumerTest(t)

	transfer := models.CustodyTransfer{
		CardID:    1,
		Direction: constants.CustodyTransferDirectionPayout,
		Account:   "acct_grocery",
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("50.00")),
		Reference: "payout:test-ref-1",
		Status:    constants.CustodyTransferStatusPending,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(&transfer).Error; err != nil {
		t.Fatalf("create transfer failed: %v", err)
	}

	task, err := queue.NewCustodyReconcileTask(queue.CustodyReconcilePayload{TransferID: transfer.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCustodyReconcile(context.Background(), task); err != nil {
		t.Fatalf("handle reconcile failed: %v", err)
	}

	var check models.CustodyTransfer
	if err := db.First(&check, transfer.ID).Error; err != nil {
		t.Fatalf("query transfer failed: %v", err)
	}
	if check.Status != constants.CustodyTransferStatusFailed {
		t.Fatalf("expected failed status, got: %s", check.Status)
	}
	if check.Remark == "" {
		t.Fatal("expected reconcile remark to be set")
	}
}

func TestHandleCustodyReconcileSkipsConfirmed(t *testing.T) {
	consumer, db, _ := setupConsumerTest(t)

	transfer := models.CustodyTransfer{
		CardID:    1,
		Direction: constants.CustodyTransferDirectionDeposit,
		Account:   "acct_giver",
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("100.00")),
		Reference: "deposit:test-ref-2",
		Status:    constants.CustodyTransferStatusConfirmed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&transfer).Error; err != nil {
		t.Fatalf("create transfer failed: %v", err)
	}

	task, err := queue.NewCustodyReconcileTask(queue.CustodyReconcilePayload{TransferID: transfer.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCustodyReconcile(context.Background(), task); err != nil {
		t.Fatalf("handle reconcile failed: %v", err)
	}

	var check models.CustodyTransfer
	if err := db.First(&check, transfer.ID).Error; err != nil {
		t.Fatalf("query transfer failed: %v", err)
	}
	if check.Status != constants.CustodyTransferStatusConfirmed {
		t.Fatalf("confirmed transfer should stay untouched, got: %s", check.Status)
	}

	// 未知划转直接跳过，不报错
	unknown, err := queue.NewCustodyReconcileTask(queue.CustodyReconcilePayload{TransferID: transfer.ID + 100})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCustodyReconcile(context.Background(), unknown); err != nil {
		t.Fatalf("unknown transfer should be skipped, got: %v", err)
	}
}

func TestHandleCardEventWebhookDelivers(t *testing.T) {
	consumer, db, cfg := setupConsumerTest(t)

	var received models.CardEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode webhook body failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	cfg.Events.WebhookURL = server.URL

	event := models.CardEvent{
		CardID:       7,
		Type:         constants.CardEventTypeCardRedeemed,
		Account:      "acct_grocery",
		Amount:       models.NewMoneyFromDecimal(decimal.RequireFromString("30.00")),
		BalanceAfter: models.NewMoneyFromDecimal(decimal.RequireFromString("70.00")),
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}

	task, err := queue.NewCardEventWebhookTask(queue.CardEventWebhookPayload{EventID: event.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCardEventWebhook(context.Background(), task); err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}
	if received.ID != event.ID || received.Type != constants.CardEventTypeCardRedeemed {
		t.Fatalf("unexpected delivered event: %+v", received)
	}
}

func TestHandleCardEventWebhookBadStatus(t *testing.T) {
	consumer, db, cfg := setupConsumerTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	cfg.Events.WebhookURL = server.URL

	event := models.CardEvent{
		CardID:    8,
		Type:      constants.CardEventTypeCardCreated,
		Account:   "acct_giver",
		CreatedAt: time.Now(),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}

	task, err := queue.NewCardEventWebhookTask(queue.CardEventWebhookPayload{EventID: event.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCardEventWebhook(context.Background(), task); err == nil {
		t.Fatal("expected error on non-2xx webhook response for asynq retry")
	}
}

func TestHandleCardEventWebhookSkipsWithoutURL(t *testing.T) {
	consumer, _, _ := setupConsumerTest(t)

	task, err := queue.NewCardEventWebhookTask(queue.CardEventWebhookPayload{EventID: 42})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCardEventWebhook(context.Background(), task); err != nil {
		t.Fatalf("missing webhook url should be a no-op, got: %v", err)
	}
}
