package repository

import (
	"errors"
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/models"

	"gorm.io/gorm"
)

// CardEventRepository 卡片事件仓储接口
type CardEventRepository interface {
	Create(event *models.CardEvent) error
	GetByID(id uint) (*models.CardEvent, error)
	GetByCardAndReference(cardID uint, reference string) (*models.CardEvent, error)
	List(filter CardEventListFilter) ([]models.CardEvent, int64, error)
	ListByCard(cardID uint) ([]models.CardEvent, error)
	WithTx(tx *gorm.DB) *GormCardEventRepository
}

// GormCardEventRepository GORM 卡片事件仓储实现
type GormCardEventRepository struct {
	db *gorm.DB
}

// NewCardEventRepository 创建卡片事件仓储
func NewCardEventRepository(db *gorm.DB) *GormCardEventRepository {
	return &GormCardEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCardEventRepository) WithTx(tx *gorm.DB) *GormCardEventRepository {
	if tx == nil {
		return r
	}
	return &GormCardEventRepository{db: tx}
}

// Create 写入事件记录（只追加）
func (r *GormCardEventRepository) Create(event *models.CardEvent) error {
	if event == nil {
		return errors.New("invalid card event")
	}
	return r.db.Create(event).Error
}

// GetByID 按ID查询事件
func (r *GormCardEventRepository) GetByID(id uint) (*models.CardEvent, error) {
	if id == 0 {
		return nil, nil
	}
	var event models.CardEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// GetByCardAndReference 按卡片与幂等引用查询事件
func (r *GormCardEventRepository) GetByCardAndReference(cardID uint, reference string) (*models.CardEvent, error) {
	reference = strings.TrimSpace(reference)
	if cardID == 0 || reference == "" {
		return nil, nil
	}
	var event models.CardEvent
	if err := r.db.Where("card_id = ? AND reference = ?", cardID, reference).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// List 分页查询事件列表
func (r *GormCardEventRepository) List(filter CardEventListFilter) ([]models.CardEvent, int64, error) {
	query := r.db.Model(&models.CardEvent{})
	if filter.CardID != 0 {
		query = query.Where("card_id = ?", filter.CardID)
	}
	if eventType := strings.TrimSpace(filter.Type); eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	if account := strings.TrimSpace(filter.Account); account != "" {
		query = query.Where("account = ?", account)
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

	var events []models.CardEvent
	if err := query.Order("id desc").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByCard 按卡片查询全部事件（按发生顺序）
func (r *GormCardEventRepository) ListByCard(cardID uint) ([]models.CardEvent, error) {
	if cardID == 0 {
		return []models.CardEvent{}, nil
	}
	var events []models.CardEvent
	if err := r.db.Where("card_id = ?", cardID).Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
