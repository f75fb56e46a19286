package queue

import (
	"encoding/json"

	"github.com/ysongh/SmartSpendGift/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCardEventWebhook 卡片事件 Webhook 推送任务
	TaskCardEventWebhook = constants.TaskCardEventWebhook
	// TaskCustodyReconcile 托管划转对账任务
	TaskCustodyReconcile = constants.TaskCustodyReconcile
)

// CardEventWebhookPayload 卡片事件推送任务载荷
type CardEventWebhookPayload struct {
	EventID uint `json:"event_id"`
}

// CustodyReconcilePayload 托管划转对账任务载荷
type CustodyReconcilePayload struct {
	TransferID uint `json:"transfer_id"`
}

// NewCardEventWebhookTask 创建卡片事件推送任务
func NewCardEventWebhookTask(payload CardEventWebhookPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCardEventWebhook, body), nil
}

// NewCustodyReconcileTask 创建托管划转对账任务
func NewCustodyReconcileTask(payload CustodyReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCustodyReconcile, body), nil
}
