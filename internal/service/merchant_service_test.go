package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupMerchantServiceTest(t *testing.T) (*MerchantService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:merchant_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Merchant{}, &models.CardEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewMerchantService(repository.NewMerchantRepository(db), repository.NewCardEventRepository(db))
	return svc, db
}

func TestMerchantServiceRegister(t *testing.T) {
	svc, db := setupMerchantServiceTest(t)

	merchant, err := svc.Register(MerchantRegisterInput{
		Address: "acct_grocery",
		Name:    "日用百货",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if merchant == nil || merchant.ID == 0 {
		t.Fatalf("invalid merchant result: %+v", merchant)
	}

	var event models.CardEvent
	if err := db.Where("type = ? AND account = ?", constants.CardEventTypeMerchantRegistered, "acct_grocery").
		First(&event).Error; err != nil {
		t.Fatalf("query register event failed: %v", err)
	}
	if event.Remark != "日用百货" {
		t.Fatalf("unexpected event remark: %s", event.Remark)
	}

	// 地址一次性认领：重复注册被拒绝
	_, err = svc.Register(MerchantRegisterInput{
		Address: "acct_grocery",
		Name:    "另一个名字",
	})
	if !errors.Is(err, ErrMerchantAlreadyRegistered) {
		t.Fatalf("expected ErrMerchantAlreadyRegistered, got: %v", err)
	}
}

func TestMerchantServiceRegisterValidation(t *testing.T) {
	svc, _ := setupMerchantServiceTest(t)

	cases := []struct {
		name  string
		input MerchantRegisterInput
	}{
		{name: "empty address", input: MerchantRegisterInput{Address: "  ", Name: "商户"}},
		{name: "address with spaces", input: MerchantRegisterInput{Address: "acct one", Name: "商户"}},
		{name: "address too long", input: MerchantRegisterInput{Address: strings.Repeat("a", constants.AccountAddressMaxLen+1), Name: "商户"}},
		{name: "empty name", input: MerchantRegisterInput{Address: "acct_grocery", Name: " "}},
		{name: "name too long", input: MerchantRegisterInput{Address: "acct_grocery", Name: strings.Repeat("名", constants.MerchantNameMaxLen+1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.input)
			if !errors.Is(err, ErrMerchantInvalid) {
				t.Fatalf("expected ErrMerchantInvalid, got: %v", err)
			}
		})
	}
}

func TestMerchantServiceLookup(t *testing.T) {
	svc, _ := setupMerchantServiceTest(t)

	if svc.IsRegistered("acct_books") {
		t.Fatal("unregistered address should report false")
	}
	if name := svc.GetName("acct_books"); name != "" {
		t.Fatalf("expected empty name for unregistered address, got: %s", name)
	}
	if _, err := svc.GetMerchant("acct_books"); !errors.Is(err, ErrMerchantNotRegistered) {
		t.Fatalf("expected ErrMerchantNotRegistered, got: %v", err)
	}

	if _, err := svc.Register(MerchantRegisterInput{Address: "acct_books", Name: "图书文具"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if !svc.IsRegistered("acct_books") {
		t.Fatal("registered address should report true")
	}
	if name := svc.GetName(" acct_books "); name != "图书文具" {
		t.Fatalf("unexpected name: %s", name)
	}
	merchant, err := svc.GetMerchant("acct_books")
	if err != nil {
		t.Fatalf("get merchant failed: %v", err)
	}
	if merchant.Name != "图书文具" {
		t.Fatalf("unexpected merchant name: %s", merchant.Name)
	}
}

func TestMerchantServiceList(t *testing.T) {
	svc, _ := setupMerchantServiceTest(t)
	for i := 0; i < 5; i++ {
		_, err := svc.Register(MerchantRegisterInput{
			Address: fmt.Sprintf("acct_shop_%02d", i),
			Name:    fmt.Sprintf("商户%02d", i),
		})
		if err != nil {
			t.Fatalf("register merchant %d failed: %v", i, err)
		}
	}

	merchants, total, err := svc.ListMerchants(MerchantListInput{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list merchants failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total=5, got: %d", total)
	}
	if len(merchants) != 2 {
		t.Fatalf("expected 2 merchants per page, got: %d", len(merchants))
	}

	merchants, total, err = svc.ListMerchants(MerchantListInput{Keyword: "商户03", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list merchants by keyword failed: %v", err)
	}
	if total != 1 || len(merchants) != 1 {
		t.Fatalf("expected single keyword match, got total=%d len=%d", total, len(merchants))
	}
	if merchants[0].Address != "acct_shop_03" {
		t.Fatalf("unexpected match: %s", merchants[0].Address)
	}
}
