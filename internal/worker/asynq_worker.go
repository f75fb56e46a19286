package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/provider"
	"github.com/ysongh/SmartSpendGift/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultWebhookTimeout = 5 * time.Second

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container

	webhookClient *http.Client
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	timeout := defaultWebhookTimeout
	if c != nil && c.Config != nil && c.Config.Events.WebhookTimeoutMS > 0 {
		timeout = time.Duration(c.Config.Events.WebhookTimeoutMS) * time.Millisecond
	}
	return &Consumer{
		Container:     c,
		webhookClient: &http.Client{Timeout: timeout},
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskCardEventWebhook, c.handleCardEventWebhook)
	mux.HandleFunc(constants.TaskCustodyReconcile, c.handleCustodyReconcile)
}

func (c *Consumer) handleCardEventWebhook(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_card_event_webhook_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CardEventWebhookPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_card_event_webhook_unmarshal_failed", "error", err)
		return err
	}
	if payload.EventID == 0 {
		logger.Debugw("worker_card_event_webhook_skip_invalid_payload", "event_id", payload.EventID)
		return nil
	}

	webhookURL := ""
	if c.Config != nil {
		webhookURL = strings.TrimSpace(c.Config.Events.WebhookURL)
	}
	if webhookURL == "" {
		logger.Debugw("worker_card_event_webhook_skip_no_url", "event_id", payload.EventID)
		return nil
	}

	event, err := c.CardEventRepo.GetByID(payload.EventID)
	if err != nil {
		logger.Warnw("worker_card_event_webhook_fetch_failed", "event_id", payload.EventID, "error", err)
		return err
	}
	if event == nil {
		logger.Debugw("worker_card_event_webhook_skip_event_not_found", "event_id", payload.EventID)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Warnw("worker_card_event_webhook_marshal_failed", "event_id", event.ID, "error", err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.webhookClient.Do(req)
	if err != nil {
		logger.Warnw("worker_card_event_webhook_request_failed", "event_id", event.ID, "error", err)
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnw("worker_card_event_webhook_bad_status", "event_id", event.ID, "status", resp.StatusCode)
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}

	logger.Infow("card_event_webhook_delivered", "event_id", event.ID, "type", event.Type)
	return nil
}

// handleCustodyReconcile 清理超期未确认的划转流水。
// 划转确认与业务落库同事务提交，长期 pending 的流水只能来自中断的事务残留，按失败归档。
func (c *Consumer) handleCustodyReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_custody_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CustodyReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_custody_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransferID == 0 {
		logger.Debugw("worker_custody_reconcile_skip_invalid_payload", "transfer_id", payload.TransferID)
		return nil
	}

	transfer, err := c.CustodyTransferRepo.GetByID(payload.TransferID)
	if err != nil {
		logger.Warnw("worker_custody_reconcile_fetch_failed", "transfer_id", payload.TransferID, "error", err)
		return err
	}
	if transfer == nil {
		logger.Debugw("worker_custody_reconcile_skip_not_found", "transfer_id", payload.TransferID)
		return nil
	}
	if transfer.Status != constants.CustodyTransferStatusPending {
		logger.Debugw("worker_custody_reconcile_skip_not_pending", "transfer_id", transfer.ID, "status", transfer.Status)
		return nil
	}

	transfer.Status = constants.CustodyTransferStatusFailed
	transfer.Remark = "reconciled: stale pending"
	transfer.UpdatedAt = time.Now()
	if err := c.CustodyTransferRepo.Update(transfer); err != nil {
		logger.Warnw("worker_custody_reconcile_update_failed", "transfer_id", transfer.ID, "error", err)
		return err
	}

	logger.Infow("custody_transfer_reconciled",
		"transfer_id", transfer.ID,
		"direction", transfer.Direction,
		"reference", transfer.Reference,
	)
	return nil
}
