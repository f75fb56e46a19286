package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/models"

	"gorm.io/gorm"
)

// CustodyTransferRepository 托管划转流水仓储接口
type CustodyTransferRepository interface {
	Create(transfer *models.CustodyTransfer) error
	Update(transfer *models.CustodyTransfer) error
	GetByID(id uint) (*models.CustodyTransfer, error)
	GetByReference(reference string) (*models.CustodyTransfer, error)
	List(filter CustodyTransferListFilter) ([]models.CustodyTransfer, int64, error)
	ListStalePending(before time.Time, limit int) ([]models.CustodyTransfer, error)
	WithTx(tx *gorm.DB) *GormCustodyTransferRepository
}

// GormCustodyTransferRepository GORM 托管划转流水仓储实现
type GormCustodyTransferRepository struct {
	db *gorm.DB
}

// NewCustodyTransferRepository 创建托管划转流水仓储
func NewCustodyTransferRepository(db *gorm.DB) *GormCustodyTransferRepository {
	return &GormCustodyTransferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustodyTransferRepository) WithTx(tx *gorm.DB) *GormCustodyTransferRepository {
	if tx == nil {
		return r
	}
	return &GormCustodyTransferRepository{db: tx}
}

// Create 创建划转流水
func (r *GormCustodyTransferRepository) Create(transfer *models.CustodyTransfer) error {
	if transfer == nil {
		return errors.New("invalid custody transfer")
	}
	return r.db.Create(transfer).Error
}

// Update 更新划转流水
func (r *GormCustodyTransferRepository) Update(transfer *models.CustodyTransfer) error {
	if transfer == nil {
		return errors.New("invalid custody transfer")
	}
	return r.db.Save(transfer).Error
}

// GetByID 按ID查询划转流水
func (r *GormCustodyTransferRepository) GetByID(id uint) (*models.CustodyTransfer, error) {
	if id == 0 {
		return nil, nil
	}
	var transfer models.CustodyTransfer
	if err := r.db.First(&transfer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// GetByReference 按网关幂等引用查询划转流水
func (r *GormCustodyTransferRepository) GetByReference(reference string) (*models.CustodyTransfer, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var transfer models.CustodyTransfer
	if err := r.db.Where("reference = ?", reference).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// List 分页查询划转流水
func (r *GormCustodyTransferRepository) List(filter CustodyTransferListFilter) ([]models.CustodyTransfer, int64, error) {
	query := r.db.Model(&models.CustodyTransfer{})
	if filter.CardID != 0 {
		query = query.Where("card_id = ?", filter.CardID)
	}
	if direction := strings.TrimSpace(filter.Direction); direction != "" {
		query = query.Where("direction = ?", direction)
	}
	if account := strings.TrimSpace(filter.Account); account != "" {
		query = query.Where("account = ?", account)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var transfers []models.CustodyTransfer
	if err := query.Order("id desc").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

// ListStalePending 查询超期未确认的划转流水（对账任务使用）
func (r *GormCustodyTransferRepository) ListStalePending(before time.Time, limit int) ([]models.CustodyTransfer, error) {
	if limit <= 0 {
		limit = 100
	}
	var transfers []models.CustodyTransfer
	if err := r.db.Where("status = ? AND created_at < ?", "pending", before).
		Order("id asc").
		Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}
