package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledgerCall struct {
	Account   string
	Amount    string
	Reference string
}

type stubLedger struct {
	depositErr error
	payoutErr  error
	deposits   []ledgerCall
	payouts    []ledgerCall
}

func (l *stubLedger) Deposit(_ context.Context, account, amount, reference string) error {
	if l.depositErr != nil {
		return l.depositErr
	}
	l.deposits = append(l.deposits, ledgerCall{Account: account, Amount: amount, Reference: reference})
	return nil
}

func (l *stubLedger) Payout(_ context.Context, account, amount, reference string) error {
	if l.payoutErr != nil {
		return l.payoutErr
	}
	l.payouts = append(l.payouts, ledgerCall{Account: account, Amount: amount, Reference: reference})
	return nil
}

func setupGiftCardServiceTest(t *testing.T) (*GiftCardService, *stubLedger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_card_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Merchant{},
		&models.GiftCard{},
		&models.GiftCardShare{},
		&models.CardEvent{},
		&models.CustodyTransfer{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledger := &stubLedger{}
	svc := NewGiftCardService(
		repository.NewGiftCardRepository(db),
		repository.NewMerchantRepository(db),
		repository.NewCardEventRepository(db),
		repository.NewCustodyTransferRepository(db),
		ledger,
		nil,
	)
	return svc, ledger, db
}

func seedMerchant(t *testing.T, db *gorm.DB, address, name string) {
	t.Helper()
	merchant := models.Merchant{
		Address:   address,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
}

func seedRedeemableCard(t *testing.T, db *gorm.DB, giver string, total string, merchants []string, percents []int) *models.GiftCard {
	t.Helper()
	now := time.Now()
	amount := models.NewMoneyFromDecimal(decimal.RequireFromString(total))
	card := models.GiftCard{
		Giver:            giver,
		Recipient:        "acct_recipient",
		TotalAmount:      amount,
		RemainingBalance: amount,
		Currency:         constants.PoolCurrencyDefault,
		UnlockAt:         now.Add(-time.Hour),
		RefundAt:         now.Add(24 * time.Hour),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for i, merchant := range merchants {
		card.Shares = append(card.Shares, models.GiftCardShare{
			Merchant:       merchant,
			Percent:        percents[i],
			RedeemedAmount: models.ZeroMoney(),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	return &card
}

func validCreateInput() CreateCardInput {
	return CreateCardInput{
		Giver:     "acct_giver",
		Recipient: "acct_recipient",
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("1000.00")),
		UnlockAt:  time.Now().Add(time.Hour),
		RefundAt:  time.Now().Add(48 * time.Hour),
		Merchants: []string{"acct_grocery", "acct_books"},
		Percents:  []int{75, 25},
	}
}

func TestGiftCardServiceCreateCard(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	seedMerchant(t, db, "acct_grocery", "日用百货")
	seedMerchant(t, db, "acct_books", "图书文具")

	card, err := svc.CreateCard(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if card == nil || card.ID == 0 {
		t.Fatalf("invalid card result: %+v", card)
	}
	if !card.RemainingBalance.Decimal.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("unexpected remaining balance: %s", card.RemainingBalance.String())
	}
	if !card.IsActive {
		t.Fatal("new card should be active")
	}
	if len(card.Shares) != 2 {
		t.Fatalf("expected 2 shares, got: %d", len(card.Shares))
	}

	var eventCount int64
	if err := db.Model(&models.CardEvent{}).Where("card_id = ?", card.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 3 {
		t.Fatalf("expected 3 events (created + 2 merchant_added), got: %d", eventCount)
	}

	var transfer models.CustodyTransfer
	if err := db.Where("card_id = ?", card.ID).First(&transfer).Error; err != nil {
		t.Fatalf("query transfer failed: %v", err)
	}
	if transfer.Direction != constants.CustodyTransferDirectionDeposit {
		t.Fatalf("expected deposit transfer, got: %s", transfer.Direction)
	}
	if transfer.Status != constants.CustodyTransferStatusConfirmed {
		t.Fatalf("expected confirmed transfer, got: %s", transfer.Status)
	}
	if len(ledger.deposits) != 1 || ledger.deposits[0].Account != "acct_giver" || ledger.deposits[0].Amount != "1000.00" {
		t.Fatalf("unexpected ledger deposits: %+v", ledger.deposits)
	}
}

func TestGiftCardServiceCreateCardValidation(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	seedMerchant(t, db, "acct_grocery", "日用百货")
	seedMerchant(t, db, "acct_books", "图书文具")

	cases := []struct {
		name    string
		mutate  func(*CreateCardInput)
		wantErr error
	}{
		{
			name:    "empty recipient",
			mutate:  func(in *CreateCardInput) { in.Recipient = " " },
			wantErr: ErrGiftCardRecipientInvalid,
		},
		{
			name:    "zero amount",
			mutate:  func(in *CreateCardInput) { in.Amount = models.ZeroMoney() },
			wantErr: ErrGiftCardAmountInvalid,
		},
		{
			name:    "unlock in the past",
			mutate:  func(in *CreateCardInput) { in.UnlockAt = time.Now().Add(-time.Minute) },
			wantErr: ErrGiftCardUnlockDateInvalid,
		},
		{
			name:    "refund before unlock",
			mutate:  func(in *CreateCardInput) { in.RefundAt = in.UnlockAt.Add(-time.Minute) },
			wantErr: ErrGiftCardRefundDateInvalid,
		},
		{
			name:    "share length mismatch",
			mutate:  func(in *CreateCardInput) { in.Percents = []int{100} },
			wantErr: ErrGiftCardShareLengthMismatch,
		},
		{
			name:    "share sum not 100",
			mutate:  func(in *CreateCardInput) { in.Percents = []int{70, 25} },
			wantErr: ErrGiftCardShareSumInvalid,
		},
		{
			name:    "negative share",
			mutate:  func(in *CreateCardInput) { in.Percents = []int{110, -10} },
			wantErr: ErrGiftCardShareSumInvalid,
		},
		{
			name: "duplicate merchant",
			mutate: func(in *CreateCardInput) {
				in.Merchants = []string{"acct_grocery", "acct_grocery"}
				in.Percents = []int{75, 25}
			},
			wantErr: ErrMerchantInvalid,
		},
		{
			name: "unregistered merchant",
			mutate: func(in *CreateCardInput) {
				in.Merchants = []string{"acct_grocery", "acct_unknown"}
			},
			wantErr: ErrMerchantNotRegistered,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := svc.CreateCard(context.Background(), input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}

	// 校验失败不应落任何记录
	var cardCount int64
	if err := db.Model(&models.GiftCard{}).Count(&cardCount).Error; err != nil {
		t.Fatalf("count cards failed: %v", err)
	}
	if cardCount != 0 {
		t.Fatalf("expected no cards after validation failures, got: %d", cardCount)
	}
}

func TestGiftCardServiceCreateCardDepositFailureRollsBack(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	seedMerchant(t, db, "acct_grocery", "日用百货")
	seedMerchant(t, db, "acct_books", "图书文具")
	ledger.depositErr = errors.New("gateway timeout")

	_, err := svc.CreateCard(context.Background(), validCreateInput())
	if !errors.Is(err, ErrGiftCardDepositFailed) {
		t.Fatalf("expected ErrGiftCardDepositFailed, got: %v", err)
	}

	for _, table := range []interface{}{&models.GiftCard{}, &models.CardEvent{}, &models.CustodyTransfer{}} {
		var count int64
		if err := db.Model(table).Count(&count).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected rollback to leave no rows in %T, got: %d", table, count)
		}
	}
}

func TestGiftCardServiceRedeemShareCap(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "1000.00", []string{"acct_grocery", "acct_books"}, []int{75, 25})

	// 75% 份额上限 750.00
	redeemed, event, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("300.00")),
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if !redeemed.RemainingBalance.Decimal.Equal(decimal.RequireFromString("700.00")) {
		t.Fatalf("unexpected remaining balance: %s", redeemed.RemainingBalance.String())
	}
	if event == nil || event.Type != constants.CardEventTypeCardRedeemed {
		t.Fatalf("unexpected event: %+v", event)
	}

	// 25% 份额上限 250.00：刚好用满
	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_books",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("250.00")),
	})
	if err != nil {
		t.Fatalf("redeem to share cap failed: %v", err)
	}

	// 超过终身份额上限被拒绝
	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_books",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("0.01")),
	})
	if !errors.Is(err, ErrGiftCardShareExceeded) {
		t.Fatalf("expected ErrGiftCardShareExceeded, got: %v", err)
	}

	if len(ledger.payouts) != 2 {
		t.Fatalf("expected 2 payouts, got: %d", len(ledger.payouts))
	}

	var share models.GiftCardShare
	if err := db.Where("card_id = ? AND merchant = ?", card.ID, "acct_books").First(&share).Error; err != nil {
		t.Fatalf("query share failed: %v", err)
	}
	if !share.RedeemedAmount.Decimal.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("unexpected redeemed amount: %s", share.RedeemedAmount.String())
	}
}

func TestGiftCardServiceRedeemShareCapRoundsDown(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	// 33% of 100.01 = 33.0033 → 上限向下取整到 33.00
	card := seedRedeemableCard(t, db, "acct_giver", "100.01", []string{"acct_grocery", "acct_books"}, []int{33, 67})

	_, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("33.01")),
	})
	if !errors.Is(err, ErrGiftCardShareExceeded) {
		t.Fatalf("expected ErrGiftCardShareExceeded, got: %v", err)
	}

	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("33.00")),
	})
	if err != nil {
		t.Fatalf("redeem at rounded cap failed: %v", err)
	}
}

func TestGiftCardServiceRedeemWindow(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	now := time.Now()

	locked := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery"}, []int{100})
	if err := db.Model(&models.GiftCard{}).Where("id = ?", locked.ID).
		Update("unlock_at", now.Add(time.Hour)).Error; err != nil {
		t.Fatalf("update unlock_at failed: %v", err)
	}
	_, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   locked.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
	})
	if !errors.Is(err, ErrGiftCardNotYetUnlocked) {
		t.Fatalf("expected ErrGiftCardNotYetUnlocked, got: %v", err)
	}

	expired := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery"}, []int{100})
	if err := db.Model(&models.GiftCard{}).Where("id = ?", expired.ID).
		Update("refund_at", now.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("update refund_at failed: %v", err)
	}
	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   expired.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
	})
	if !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired, got: %v", err)
	}
}

func TestGiftCardServiceRedeemUnknownMerchant(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery"}, []int{100})

	_, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_books",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
	})
	if !errors.Is(err, ErrMerchantNotAllowed) {
		t.Fatalf("expected ErrMerchantNotAllowed, got: %v", err)
	}

	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID + 100,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
	})
	if !errors.Is(err, ErrGiftCardNotActive) {
		t.Fatalf("expected ErrGiftCardNotActive for unknown card, got: %v", err)
	}
}

func TestGiftCardServiceRedeemIdempotentReplay(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "500.00", []string{"acct_grocery"}, []int{100})

	first, firstEvent, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant:  "acct_grocery",
		CardID:    card.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("120.00")),
		Reference: "pos-20260825-0001",
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	replayCard, replayEvent, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant:  "acct_grocery",
		CardID:    card.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("120.00")),
		Reference: "pos-20260825-0001",
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replayEvent.ID != firstEvent.ID {
		t.Fatalf("expected same event on replay, got %d and %d", firstEvent.ID, replayEvent.ID)
	}
	if !replayCard.RemainingBalance.Decimal.Equal(first.RemainingBalance.Decimal) {
		t.Fatalf("replay should not change balance: %s vs %s",
			replayCard.RemainingBalance.String(), first.RemainingBalance.String())
	}
	if len(ledger.payouts) != 1 {
		t.Fatalf("expected single payout after replay, got: %d", len(ledger.payouts))
	}

	// 同一引用被其他商户复用按冲突处理
	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant:  "acct_giver",
		CardID:    card.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		Reference: "pos-20260825-0001",
	})
	if err == nil {
		t.Fatal("expected error for reference reuse by another account")
	}
}

func TestGiftCardServiceRedeemPayoutFailureRollsBack(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "200.00", []string{"acct_grocery"}, []int{100})
	ledger.payoutErr = errors.New("gateway rejected")

	_, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("50.00")),
	})
	if !errors.Is(err, ErrGiftCardPayoutFailed) {
		t.Fatalf("expected ErrGiftCardPayoutFailed, got: %v", err)
	}

	var check models.GiftCard
	if err := db.First(&check, card.ID).Error; err != nil {
		t.Fatalf("query card failed: %v", err)
	}
	if !check.RemainingBalance.Decimal.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected balance unchanged after rollback, got: %s", check.RemainingBalance.String())
	}
	var eventCount int64
	if err := db.Model(&models.CardEvent{}).Where("card_id = ?", card.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 0 {
		t.Fatalf("expected no events after rollback, got: %d", eventCount)
	}
}

func TestGiftCardServiceDepletionKeepsCardActive(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery"}, []int{100})

	redeemed, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("100.00")),
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if !redeemed.RemainingBalance.Decimal.IsZero() {
		t.Fatalf("expected zero balance, got: %s", redeemed.RemainingBalance.String())
	}
	// 余额耗尽不触发失效，失效只能由退款触发
	if !redeemed.IsActive {
		t.Fatal("depleted card should stay active")
	}

	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("0.01")),
	})
	if !errors.Is(err, ErrGiftCardShareExceeded) && !errors.Is(err, ErrGiftCardInsufficientBalance) {
		t.Fatalf("expected cap or balance error on depleted card, got: %v", err)
	}
	_ = db
}

func TestGiftCardServiceRefund(t *testing.T) {
	svc, ledger, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "300.00", []string{"acct_grocery"}, []int{100})

	// 退款窗口未到
	_, _, err := svc.Refund(context.Background(), RefundInput{Caller: "acct_giver", CardID: card.ID})
	if !errors.Is(err, ErrGiftCardRefundNotYetAvailable) {
		t.Fatalf("expected ErrGiftCardRefundNotYetAvailable, got: %v", err)
	}

	if err := db.Model(&models.GiftCard{}).Where("id = ?", card.ID).
		Update("refund_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("update refund_at failed: %v", err)
	}

	// 非赠卡人不可退款
	_, _, err = svc.Refund(context.Background(), RefundInput{Caller: "acct_grocery", CardID: card.ID})
	if !errors.Is(err, ErrGiftCardRefundUnauthorized) {
		t.Fatalf("expected ErrGiftCardRefundUnauthorized, got: %v", err)
	}

	refunded, event, err := svc.Refund(context.Background(), RefundInput{Caller: "acct_giver", CardID: card.ID})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.IsActive {
		t.Fatal("refunded card should be inactive")
	}
	if !refunded.RemainingBalance.Decimal.IsZero() {
		t.Fatalf("expected zero balance after refund, got: %s", refunded.RemainingBalance.String())
	}
	if event == nil || !event.Amount.Decimal.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("unexpected refund event: %+v", event)
	}
	if len(ledger.payouts) != 1 || ledger.payouts[0].Account != "acct_giver" || ledger.payouts[0].Amount != "300.00" {
		t.Fatalf("unexpected ledger payouts: %+v", ledger.payouts)
	}

	// 失效卡不可再退款、不可核销
	_, _, err = svc.Refund(context.Background(), RefundInput{Caller: "acct_giver", CardID: card.ID})
	if !errors.Is(err, ErrGiftCardNotActive) {
		t.Fatalf("expected ErrGiftCardNotActive, got: %v", err)
	}
	_, _, err = svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
	})
	if !errors.Is(err, ErrGiftCardNotActive) {
		t.Fatalf("expected ErrGiftCardNotActive on redeem after refund, got: %v", err)
	}
}

func TestGiftCardServiceRefundNothingToRefund(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery"}, []int{100})

	_, _, err := svc.Redeem(context.Background(), RedeemInput{
		Merchant: "acct_grocery",
		CardID:   card.ID,
		Amount:   models.NewMoneyFromDecimal(decimal.RequireFromString("100.00")),
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if err := db.Model(&models.GiftCard{}).Where("id = ?", card.ID).
		Update("refund_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("update refund_at failed: %v", err)
	}

	_, _, err = svc.Refund(context.Background(), RefundInput{Caller: "acct_giver", CardID: card.ID})
	if !errors.Is(err, ErrGiftCardNothingToRefund) {
		t.Fatalf("expected ErrGiftCardNothingToRefund, got: %v", err)
	}

	var check models.GiftCard
	if err := db.First(&check, card.ID).Error; err != nil {
		t.Fatalf("query card failed: %v", err)
	}
	if !check.IsActive {
		t.Fatal("card should stay active when refund captures nothing")
	}
}

func TestGiftCardServiceMerchantPercent(t *testing.T) {
	svc, _, db := setupGiftCardServiceTest(t)
	card := seedRedeemableCard(t, db, "acct_giver", "100.00", []string{"acct_grocery", "acct_books"}, []int{75, 25})

	percent, err := svc.GetMerchantPercent(card.ID, "acct_grocery")
	if err != nil {
		t.Fatalf("get percent failed: %v", err)
	}
	if percent != 75 {
		t.Fatalf("expected 75, got: %d", percent)
	}

	allowed, err := svc.IsMerchantAllowed(card.ID, "acct_unknown")
	if err != nil {
		t.Fatalf("is allowed failed: %v", err)
	}
	if allowed {
		t.Fatal("unknown merchant should not be allowed")
	}

	// 未知卡返回 0 / false，不报错
	percent, err = svc.GetMerchantPercent(card.ID+100, "acct_grocery")
	if err != nil {
		t.Fatalf("get percent for unknown card failed: %v", err)
	}
	if percent != 0 {
		t.Fatalf("expected 0 for unknown card, got: %d", percent)
	}
	_ = db
}
