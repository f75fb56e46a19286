package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/cache"
	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/repository"

	"gorm.io/gorm"
)

// 商户注册表只增不改，名称缓存可以长 TTL
const merchantNameCacheTTL = time.Hour

// MerchantService 商户注册服务
type MerchantService struct {
	repo      repository.MerchantRepository
	eventRepo repository.CardEventRepository
}

// MerchantRegisterInput 商户注册输入
type MerchantRegisterInput struct {
	Address string
	Name    string
}

// MerchantListInput 商户列表输入
type MerchantListInput struct {
	Keyword  string
	Page     int
	PageSize int
}

// NewMerchantService 创建商户注册服务
func NewMerchantService(repo repository.MerchantRepository, eventRepo repository.CardEventRepository) *MerchantService {
	return &MerchantService{
		repo:      repo,
		eventRepo: eventRepo,
	}
}

// Register 商户一次性认领地址。重复注册返回 ErrMerchantAlreadyRegistered。
func (s *MerchantService) Register(input MerchantRegisterInput) (*models.Merchant, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMerchantRegisterFailed
	}
	address := strings.TrimSpace(input.Address)
	if !isValidAccount(address) {
		return nil, ErrMerchantInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > constants.MerchantNameMaxLen {
		return nil, ErrMerchantInvalid
	}

	merchant := &models.Merchant{
		Address:   address,
		Name:      name,
		CreatedAt: time.Now(),
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, lookupErr := repo.GetByAddress(address)
		if lookupErr != nil {
			return ErrMerchantRegisterFailed
		}
		if existing != nil {
			return ErrMerchantAlreadyRegistered
		}
		if createErr := repo.Create(merchant); createErr != nil {
			return ErrMerchantRegisterFailed
		}
		if s.eventRepo != nil {
			event := models.CardEvent{
				Type:      constants.CardEventTypeMerchantRegistered,
				Account:   address,
				Remark:    name,
				CreatedAt: merchant.CreatedAt,
			}
			if eventErr := s.eventRepo.WithTx(tx).Create(&event); eventErr != nil {
				return ErrMerchantRegisterFailed
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("merchant_registered", "address", address, "name", name)
	if cacheErr := cache.SetJSON(context.Background(), merchantNameCacheKey(address), name, merchantNameCacheTTL); cacheErr != nil {
		logger.Warnw("merchant_name_cache_set_failed", "address", address, "error", cacheErr)
	}
	return merchant, nil
}

// IsRegistered 地址是否已注册。查询永不报业务错，异常按未注册处理。
func (s *MerchantService) IsRegistered(address string) bool {
	if s == nil || s.repo == nil {
		return false
	}
	merchant, err := s.repo.GetByAddress(strings.TrimSpace(address))
	if err != nil {
		logger.Warnw("merchant_lookup_failed", "address", address, "error", err)
		return false
	}
	return merchant != nil
}

// GetName 查询商户名称。未注册返回空串。
func (s *MerchantService) GetName(address string) string {
	if s == nil || s.repo == nil {
		return ""
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}

	var cached string
	if hit, err := cache.GetJSON(context.Background(), merchantNameCacheKey(address), &cached); err == nil && hit {
		return cached
	}

	merchant, err := s.repo.GetByAddress(address)
	if err != nil || merchant == nil {
		return ""
	}
	if cacheErr := cache.SetJSON(context.Background(), merchantNameCacheKey(address), merchant.Name, merchantNameCacheTTL); cacheErr != nil {
		logger.Warnw("merchant_name_cache_set_failed", "address", address, "error", cacheErr)
	}
	return merchant.Name
}

// GetMerchant 查询商户记录
func (s *MerchantService) GetMerchant(address string) (*models.Merchant, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMerchantFetchFailed
	}
	merchant, err := s.repo.GetByAddress(strings.TrimSpace(address))
	if err != nil {
		return nil, ErrMerchantFetchFailed
	}
	if merchant == nil {
		return nil, ErrMerchantNotRegistered
	}
	return merchant, nil
}

// ListMerchants 分页查询商户列表
func (s *MerchantService) ListMerchants(input MerchantListInput) ([]models.Merchant, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrMerchantFetchFailed
	}
	merchants, total, err := s.repo.List(repository.MerchantListFilter{
		Keyword:  strings.TrimSpace(input.Keyword),
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, ErrMerchantFetchFailed
	}
	return merchants, total, nil
}

func merchantNameCacheKey(address string) string {
	return fmt.Sprintf("merchant:name:%s", address)
}
