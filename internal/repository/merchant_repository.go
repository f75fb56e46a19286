package repository

import (
	"errors"
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户仓储接口
type MerchantRepository interface {
	Create(merchant *models.Merchant) error
	GetByAddress(address string) (*models.Merchant, error)
	List(filter MerchantListFilter) ([]models.Merchant, int64, error)
	Count() (int64, error)
	WithTx(tx *gorm.DB) *GormMerchantRepository
}

// GormMerchantRepository GORM 商户仓储实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户仓储
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMerchantRepository) WithTx(tx *gorm.DB) *GormMerchantRepository {
	if tx == nil {
		return r
	}
	return &GormMerchantRepository{db: tx}
}

// Create 创建商户记录
func (r *GormMerchantRepository) Create(merchant *models.Merchant) error {
	if merchant == nil {
		return errors.New("invalid merchant")
	}
	return r.db.Create(merchant).Error
}

// GetByAddress 按托管账户地址查询商户
func (r *GormMerchantRepository) GetByAddress(address string) (*models.Merchant, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	var merchant models.Merchant
	if err := r.db.Where("address = ?", address).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// List 分页查询商户列表
func (r *GormMerchantRepository) List(filter MerchantListFilter) ([]models.Merchant, int64, error) {
	query := r.db.Model(&models.Merchant{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(address LIKE ? OR name LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var merchants []models.Merchant
	if err := query.Order("id desc").Find(&merchants).Error; err != nil {
		return nil, 0, err
	}
	return merchants, total, nil
}

// Count 统计商户数量
func (r *GormMerchantRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Merchant{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
