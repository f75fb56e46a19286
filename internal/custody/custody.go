package custody

import (
	"context"
	"errors"
)

var (
	ErrConfigInvalid    = errors.New("custody config invalid")
	ErrRequestFailed    = errors.New("custody request failed")
	ErrResponseInvalid  = errors.New("custody response invalid")
	ErrTransferDeclined = errors.New("custody transfer declined")
)

// Ledger 托管池账本接口。
// 引擎侧只关心划转成败：Deposit 将赠卡人资金划入资金池，
// Payout 从资金池划出到目标账户。超时视同拒绝，调用方不重试。
type Ledger interface {
	Deposit(ctx context.Context, account string, amount string, reference string) error
	Payout(ctx context.Context, account string, amount string, reference string) error
}
