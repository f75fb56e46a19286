package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/custody"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/queue"
	"github.com/ysongh/SmartSpendGift/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftCardService 礼品卡服务
type GiftCardService struct {
	repo         repository.GiftCardRepository
	merchantRepo repository.MerchantRepository
	eventRepo    repository.CardEventRepository
	transferRepo repository.CustodyTransferRepository
	ledger       custody.Ledger
	queueClient  *queue.Client
}

// CreateCardInput 创建礼品卡输入
type CreateCardInput struct {
	Giver     string
	Recipient string
	Amount    models.Money
	UnlockAt  time.Time
	RefundAt  time.Time
	Merchants []string
	Percents  []int
}

// RedeemInput 商户核销输入
type RedeemInput struct {
	Merchant  string
	CardID    uint
	Amount    models.Money
	Reference string
}

// RefundInput 赠卡人退款输入
type RefundInput struct {
	Caller string
	CardID uint
}

// GiftCardListInput 礼品卡列表输入
type GiftCardListInput struct {
	Giver       string
	Recipient   string
	Merchant    string
	ActiveOnly  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// NewGiftCardService 创建礼品卡服务
func NewGiftCardService(
	repo repository.GiftCardRepository,
	merchantRepo repository.MerchantRepository,
	eventRepo repository.CardEventRepository,
	transferRepo repository.CustodyTransferRepository,
	ledger custody.Ledger,
	queueClient *queue.Client,
) *GiftCardService {
	return &GiftCardService{
		repo:         repo,
		merchantRepo: merchantRepo,
		eventRepo:    eventRepo,
		transferRepo: transferRepo,
		ledger:       ledger,
		queueClient:  queueClient,
	}
}

// CreateCard 创建礼品卡并将面额划入资金池。
// 校验全部通过后才会触达数据库与托管网关；入金失败整体回滚。
func (s *GiftCardService) CreateCard(ctx context.Context, input CreateCardInput) (*models.GiftCard, error) {
	if s == nil || s.repo == nil || s.merchantRepo == nil || s.ledger == nil {
		return nil, ErrGiftCardCreateFailed
	}

	giver := strings.TrimSpace(input.Giver)
	if !isValidAccount(giver) {
		return nil, ErrGiftCardCreateFailed
	}
	recipient := strings.TrimSpace(input.Recipient)
	if !isValidAccount(recipient) {
		return nil, ErrGiftCardRecipientInvalid
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrGiftCardAmountInvalid
	}
	now := time.Now()
	if !input.UnlockAt.After(now) {
		return nil, ErrGiftCardUnlockDateInvalid
	}
	if !input.RefundAt.After(input.UnlockAt) {
		return nil, ErrGiftCardRefundDateInvalid
	}
	if len(input.Merchants) != len(input.Percents) {
		return nil, ErrGiftCardShareLengthMismatch
	}
	sum := 0
	for _, percent := range input.Percents {
		if percent < 0 {
			return nil, ErrGiftCardShareSumInvalid
		}
		sum += percent
	}
	if sum != constants.ShareTotalPercent {
		return nil, ErrGiftCardShareSumInvalid
	}
	merchants, err := normalizeShareMerchants(input.Merchants)
	if err != nil {
		return nil, err
	}
	for _, merchant := range merchants {
		registered, lookupErr := s.merchantRepo.GetByAddress(merchant)
		if lookupErr != nil {
			return nil, ErrGiftCardCreateFailed
		}
		if registered == nil {
			return nil, ErrMerchantNotRegistered
		}
	}

	shares := make([]models.GiftCardShare, 0, len(merchants))
	for i, merchant := range merchants {
		shares = append(shares, models.GiftCardShare{
			Merchant:       merchant,
			Percent:        input.Percents[i],
			RedeemedAmount: models.ZeroMoney(),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	card := &models.GiftCard{
		Giver:            giver,
		Recipient:        recipient,
		TotalAmount:      models.NewMoneyFromDecimal(amount),
		RemainingBalance: models.NewMoneyFromDecimal(amount),
		Currency:         constants.PoolCurrencyDefault,
		UnlockAt:         input.UnlockAt,
		RefundAt:         input.RefundAt,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
		Shares:           shares,
	}

	var createdEvents []models.CardEvent
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		eventRepo := s.eventRepo.WithTx(tx)
		transferRepo := s.transferRepo.WithTx(tx)

		if err := repo.Create(card); err != nil {
			return ErrGiftCardCreateFailed
		}

		createdEvent := models.CardEvent{
			CardID:       card.ID,
			Type:         constants.CardEventTypeCardCreated,
			Account:      giver,
			Amount:       card.TotalAmount,
			BalanceAfter: card.RemainingBalance,
			Remark:       fmt.Sprintf("受赠人 %s", recipient),
			CreatedAt:    now,
		}
		if err := eventRepo.Create(&createdEvent); err != nil {
			return ErrGiftCardCreateFailed
		}
		createdEvents = append(createdEvents, createdEvent)
		for i := range card.Shares {
			shareEvent := models.CardEvent{
				CardID:       card.ID,
				Type:         constants.CardEventTypeMerchantAdded,
				Account:      card.Shares[i].Merchant,
				Amount:       card.TotalAmount.SharePortion(card.Shares[i].Percent),
				BalanceAfter: card.RemainingBalance,
				Remark:       fmt.Sprintf("份额 %d%%", card.Shares[i].Percent),
				CreatedAt:    now,
			}
			if err := eventRepo.Create(&shareEvent); err != nil {
				return ErrGiftCardCreateFailed
			}
			createdEvents = append(createdEvents, shareEvent)
		}

		transfer := models.CustodyTransfer{
			CardID:    card.ID,
			Direction: constants.CustodyTransferDirectionDeposit,
			Account:   giver,
			Amount:    card.TotalAmount,
			Reference: newTransferReference(constants.CustodyTransferDirectionDeposit),
			Status:    constants.CustodyTransferStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := transferRepo.Create(&transfer); err != nil {
			return ErrGiftCardCreateFailed
		}

		// 入金是事务内最后一步：网关拒绝或超时则整体回滚，不落任何记录
		if err := s.ledger.Deposit(ctx, giver, card.TotalAmount.String(), transfer.Reference); err != nil {
			logger.Warnw("gift_card_deposit_failed",
				"giver", giver,
				"amount", card.TotalAmount.String(),
				"reference", transfer.Reference,
				"error", err,
			)
			return ErrGiftCardDepositFailed
		}
		transfer.Status = constants.CustodyTransferStatusConfirmed
		transfer.UpdatedAt = time.Now()
		if err := transferRepo.Update(&transfer); err != nil {
			return ErrGiftCardCreateFailed
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logger.Infow("gift_card_created",
		"card_id", card.ID,
		"giver", giver,
		"recipient", recipient,
		"amount", card.TotalAmount.String(),
		"merchants", len(card.Shares),
	)
	s.dispatchEvents(createdEvents)
	return card, nil
}

// Redeem 商户核销。按卡行锁串行化，终身份额上限以初始面额为基数。
// 携带幂等引用的重复请求直接返回首次核销结果，不再划转资金。
func (s *GiftCardService) Redeem(ctx context.Context, input RedeemInput) (*models.GiftCard, *models.CardEvent, error) {
	if s == nil || s.repo == nil || s.eventRepo == nil || s.ledger == nil {
		return nil, nil, ErrGiftCardFetchFailed
	}
	merchant := strings.TrimSpace(input.Merchant)
	if !isValidAccount(merchant) {
		return nil, nil, ErrMerchantNotAllowed
	}
	reference := strings.TrimSpace(input.Reference)

	var (
		resultCard  *models.GiftCard
		resultEvent *models.CardEvent
		replayed    bool
	)
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		eventRepo := s.eventRepo.WithTx(tx)
		transferRepo := s.transferRepo.WithTx(tx)

		card, err := repo.GetByIDForUpdate(input.CardID)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil || !card.IsActive {
			return ErrGiftCardNotActive
		}

		if reference != "" {
			applied, lookupErr := eventRepo.GetByCardAndReference(card.ID, reference)
			if lookupErr != nil {
				return ErrGiftCardFetchFailed
			}
			if applied != nil {
				if applied.Type != constants.CardEventTypeCardRedeemed || applied.Account != merchant {
					return ErrGiftCardFetchFailed
				}
				resultCard = card
				resultEvent = applied
				replayed = true
				return nil
			}
		}

		now := time.Now()
		if !card.IsUnlocked(now) {
			return ErrGiftCardNotYetUnlocked
		}
		if card.IsExpired(now) {
			return ErrGiftCardExpired
		}
		share := card.ShareFor(merchant)
		if share == nil || share.Percent == 0 {
			return ErrMerchantNotAllowed
		}
		amount := input.Amount.Decimal.Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			return ErrGiftCardAmountInvalid
		}
		shareCap := share.CapFor(card.TotalAmount)
		if share.RedeemedAmount.Decimal.Add(amount).GreaterThan(shareCap.Decimal) {
			return ErrGiftCardShareExceeded
		}
		if amount.GreaterThan(card.RemainingBalance.Decimal) {
			return ErrGiftCardInsufficientBalance
		}

		// 核销不触发失效：余额耗尽的卡仍保持 is_active，直至退款
		card.RemainingBalance = models.NewMoneyFromDecimal(card.RemainingBalance.Decimal.Sub(amount))
		card.UpdatedAt = now
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}
		share.RedeemedAmount = models.NewMoneyFromDecimal(share.RedeemedAmount.Decimal.Add(amount))
		share.UpdatedAt = now
		if err := repo.UpdateShare(share); err != nil {
			return ErrGiftCardUpdateFailed
		}

		event := models.CardEvent{
			CardID:       card.ID,
			Type:         constants.CardEventTypeCardRedeemed,
			Account:      merchant,
			Amount:       models.NewMoneyFromDecimal(amount),
			BalanceAfter: card.RemainingBalance,
			CreatedAt:    now,
		}
		if reference != "" {
			event.Reference = &reference
		}
		if err := eventRepo.Create(&event); err != nil {
			return ErrGiftCardUpdateFailed
		}

		transfer := models.CustodyTransfer{
			CardID:    card.ID,
			Direction: constants.CustodyTransferDirectionPayout,
			Account:   merchant,
			Amount:    models.NewMoneyFromDecimal(amount),
			Reference: newTransferReference(constants.CustodyTransferDirectionPayout),
			Status:    constants.CustodyTransferStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := transferRepo.Create(&transfer); err != nil {
			return ErrGiftCardUpdateFailed
		}

		// 出金是事务内最后一步：失败则余额扣减一并回滚，不重试
		if err := s.ledger.Payout(ctx, merchant, transfer.Amount.String(), transfer.Reference); err != nil {
			logger.Warnw("gift_card_payout_failed",
				"card_id", card.ID,
				"merchant", merchant,
				"amount", transfer.Amount.String(),
				"reference", transfer.Reference,
				"error", err,
			)
			return ErrGiftCardPayoutFailed
		}
		transfer.Status = constants.CustodyTransferStatusConfirmed
		transfer.UpdatedAt = time.Now()
		if err := transferRepo.Update(&transfer); err != nil {
			return ErrGiftCardUpdateFailed
		}

		resultCard = card
		resultEvent = &event
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	if replayed {
		logger.Infow("gift_card_redeem_replayed",
			"card_id", resultCard.ID,
			"merchant", merchant,
			"reference", reference,
		)
		return resultCard, resultEvent, nil
	}

	logger.Infow("gift_card_redeemed",
		"card_id", resultCard.ID,
		"merchant", merchant,
		"amount", resultEvent.Amount.String(),
		"remaining", resultCard.RemainingBalance.String(),
	)
	s.dispatchEvents([]models.CardEvent{*resultEvent})
	return resultCard, resultEvent, nil
}

// Refund 赠卡人退款：捕获剩余余额、清零并使卡失效（唯一失效路径）。
func (s *GiftCardService) Refund(ctx context.Context, input RefundInput) (*models.GiftCard, *models.CardEvent, error) {
	if s == nil || s.repo == nil || s.eventRepo == nil || s.ledger == nil {
		return nil, nil, ErrGiftCardFetchFailed
	}
	caller := strings.TrimSpace(input.Caller)
	if !isValidAccount(caller) {
		return nil, nil, ErrGiftCardRefundUnauthorized
	}

	var (
		resultCard  *models.GiftCard
		resultEvent *models.CardEvent
	)
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		eventRepo := s.eventRepo.WithTx(tx)
		transferRepo := s.transferRepo.WithTx(tx)

		card, err := repo.GetByIDForUpdate(input.CardID)
		if err != nil {
			return ErrGiftCardFetchFailed
		}
		if card == nil || !card.IsActive {
			return ErrGiftCardNotActive
		}
		if card.Giver != caller {
			return ErrGiftCardRefundUnauthorized
		}
		now := time.Now()
		if now.Before(card.RefundAt) {
			return ErrGiftCardRefundNotYetAvailable
		}
		if !card.RemainingBalance.IsPositive() {
			return ErrGiftCardNothingToRefund
		}

		captured := card.RemainingBalance
		card.RemainingBalance = models.ZeroMoney()
		card.IsActive = false
		card.UpdatedAt = now
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}

		event := models.CardEvent{
			CardID:       card.ID,
			Type:         constants.CardEventTypeCardRefunded,
			Account:      caller,
			Amount:       captured,
			BalanceAfter: card.RemainingBalance,
			CreatedAt:    now,
		}
		if err := eventRepo.Create(&event); err != nil {
			return ErrGiftCardUpdateFailed
		}

		transfer := models.CustodyTransfer{
			CardID:    card.ID,
			Direction: constants.CustodyTransferDirectionPayout,
			Account:   caller,
			Amount:    captured,
			Reference: newTransferReference(constants.CustodyTransferDirectionPayout),
			Status:    constants.CustodyTransferStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := transferRepo.Create(&transfer); err != nil {
			return ErrGiftCardUpdateFailed
		}

		if err := s.ledger.Payout(ctx, caller, captured.String(), transfer.Reference); err != nil {
			logger.Warnw("gift_card_refund_payout_failed",
				"card_id", card.ID,
				"giver", caller,
				"amount", captured.String(),
				"reference", transfer.Reference,
				"error", err,
			)
			return ErrGiftCardPayoutFailed
		}
		transfer.Status = constants.CustodyTransferStatusConfirmed
		transfer.UpdatedAt = time.Now()
		if err := transferRepo.Update(&transfer); err != nil {
			return ErrGiftCardUpdateFailed
		}

		resultCard = card
		resultEvent = &event
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	logger.Infow("gift_card_refunded",
		"card_id", resultCard.ID,
		"giver", caller,
		"amount", resultEvent.Amount.String(),
	)
	s.dispatchEvents([]models.CardEvent{*resultEvent})
	return resultCard, resultEvent, nil
}

// GetCard 查询礼品卡详情（含份额）
func (s *GiftCardService) GetCard(id uint) (*models.GiftCard, error) {
	if s == nil || s.repo == nil {
		return nil, ErrGiftCardFetchFailed
	}
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// ListCards 查询礼品卡列表
func (s *GiftCardService) ListCards(input GiftCardListInput) ([]models.GiftCard, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrGiftCardFetchFailed
	}
	cards, total, err := s.repo.List(repository.GiftCardListFilter{
		Giver:       strings.TrimSpace(input.Giver),
		Recipient:   strings.TrimSpace(input.Recipient),
		Merchant:    strings.TrimSpace(input.Merchant),
		ActiveOnly:  input.ActiveOnly,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
	if err != nil {
		return nil, 0, ErrGiftCardFetchFailed
	}
	return cards, total, nil
}

// ListCardEvents 查询卡片事件流水
func (s *GiftCardService) ListCardEvents(cardID uint) ([]models.CardEvent, error) {
	if s == nil || s.eventRepo == nil {
		return nil, ErrGiftCardFetchFailed
	}
	events, err := s.eventRepo.ListByCard(cardID)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	return events, nil
}

// IsMerchantAllowed 商户是否持有该卡的有效份额。未知卡返回 false。
func (s *GiftCardService) IsMerchantAllowed(cardID uint, merchant string) (bool, error) {
	percent, err := s.GetMerchantPercent(cardID, merchant)
	if err != nil {
		return false, err
	}
	return percent > 0, nil
}

// GetMerchantPercent 查询商户在该卡的份额比例。未知卡或无份额返回 0。
func (s *GiftCardService) GetMerchantPercent(cardID uint, merchant string) (int, error) {
	if s == nil || s.repo == nil {
		return 0, ErrGiftCardFetchFailed
	}
	card, err := s.repo.GetByID(cardID)
	if err != nil {
		return 0, ErrGiftCardFetchFailed
	}
	if card == nil {
		return 0, nil
	}
	share := card.ShareFor(strings.TrimSpace(merchant))
	if share == nil {
		return 0, nil
	}
	return share.Percent, nil
}

func (s *GiftCardService) dispatchEvents(events []models.CardEvent) {
	if s == nil || s.queueClient == nil {
		return
	}
	for i := range events {
		if err := s.queueClient.EnqueueCardEventWebhook(events[i].ID); err != nil {
			logger.Warnw("card_event_webhook_enqueue_failed",
				"event_id", events[i].ID,
				"error", err,
			)
		}
	}
}

func isValidAccount(account string) bool {
	if account == "" || len(account) > constants.AccountAddressMaxLen {
		return false
	}
	return !strings.ContainsAny(account, " \t\r\n")
}

func normalizeShareMerchants(merchants []string) ([]string, error) {
	normalized := make([]string, 0, len(merchants))
	seen := make(map[string]struct{}, len(merchants))
	for _, merchant := range merchants {
		trimmed := strings.TrimSpace(merchant)
		if !isValidAccount(trimmed) {
			return nil, ErrMerchantInvalid
		}
		if _, ok := seen[trimmed]; ok {
			return nil, ErrMerchantInvalid
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}

func newTransferReference(direction string) string {
	return fmt.Sprintf("%s:%s", direction, uuid.NewString())
}
