package repository

import (
	"errors"
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftCardRepository 礼品卡仓储接口
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	GetByID(id uint) (*models.GiftCard, error)
	GetByIDForUpdate(id uint) (*models.GiftCard, error)
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	Update(card *models.GiftCard) error
	UpdateShare(share *models.GiftCardShare) error
	WithTx(tx *gorm.DB) *GormGiftCardRepository
}

// GormGiftCardRepository GORM 礼品卡仓储实现
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository 创建礼品卡仓储
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftCardRepository) WithTx(tx *gorm.DB) *GormGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardRepository{db: tx}
}

// Create 创建礼品卡（级联写入份额记录）
func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Create(card).Error
}

// GetByID 根据 ID 查询礼品卡（含份额）
func (r *GormGiftCardRepository) GetByID(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Preload("Shares").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByIDForUpdate 根据 ID 加锁查询礼品卡（含份额）
func (r *GormGiftCardRepository) GetByIDForUpdate(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.db.Where("card_id = ?", card.ID).
		Order("id asc").
		Find(&card.Shares).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// List 查询礼品卡列表
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	query := r.db.Model(&models.GiftCard{})
	if giver := strings.TrimSpace(filter.Giver); giver != "" {
		query = query.Where("giver = ?", giver)
	}
	if recipient := strings.TrimSpace(filter.Recipient); recipient != "" {
		query = query.Where("recipient = ?", recipient)
	}
	if merchant := strings.TrimSpace(filter.Merchant); merchant != "" {
		query = query.Joins("JOIN gift_card_shares ON gift_card_shares.card_id = gift_cards.id").
			Where("gift_card_shares.merchant = ?", merchant)
	}
	if filter.ActiveOnly {
		query = query.Where("gift_cards.is_active = ?", true)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("gift_cards.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("gift_cards.created_at <= ?", *filter.CreatedTo)
	}
	if filter.UnlockFrom != nil {
		query = query.Where("gift_cards.unlock_at >= ?", *filter.UnlockFrom)
	}
	if filter.UnlockTo != nil {
		query = query.Where("gift_cards.unlock_at <= ?", *filter.UnlockTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var cards []models.GiftCard
	if err := query.Preload("Shares").Order("gift_cards.id desc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// Update 更新礼品卡
func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Omit("Shares").Save(card).Error
}

// UpdateShare 更新商户份额记录
func (r *GormGiftCardRepository) UpdateShare(share *models.GiftCardShare) error {
	if share == nil {
		return errors.New("invalid gift card share")
	}
	return r.db.Save(share).Error
}
