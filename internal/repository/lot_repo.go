package repository

import (
	"errors"

	"go-retail-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LotRepository interface {
	// FindOpenByItem returns lots with remaining quantity, oldest first,
	// id as deterministic tie-break on equal timestamps.
	FindOpenByItem(tx *gorm.DB, itemID uuid.UUID) ([]model.CostLot, error)
	// FindByItemAndCost returns the oldest lot with an exactly matching
	// unit cost, exhausted or not, or nil when none exists.
	FindByItemAndCost(tx *gorm.DB, itemID uuid.UUID, unitCost decimal.Decimal) (*model.CostLot, error)
	Create(tx *gorm.DB, lot *model.CostLot) error
	UpdateQuantity(tx *gorm.DB, lotID uuid.UUID, quantity int) error
	FindByItem(itemID uuid.UUID) ([]model.CostLot, error)
}

type lotRepo struct {
	db *gorm.DB
}

func NewLotRepo(db *gorm.DB) LotRepository {
	return &lotRepo{db}
}

func (r *lotRepo) FindOpenByItem(tx *gorm.DB, itemID uuid.UUID) ([]model.CostLot, error) {
	var lots []model.CostLot
	err := tx.Where("item_id = ? AND quantity > 0", itemID).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *lotRepo) FindByItemAndCost(tx *gorm.DB, itemID uuid.UUID, unitCost decimal.Decimal) (*model.CostLot, error) {
	var lot model.CostLot
	err := tx.Where("item_id = ? AND unit_cost = ?", itemID, unitCost).
		Order("created_at ASC, id ASC").
		First(&lot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepo) Create(tx *gorm.DB, lot *model.CostLot) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(lot).Error
}

func (r *lotRepo) UpdateQuantity(tx *gorm.DB, lotID uuid.UUID, quantity int) error {
	return tx.Model(&model.CostLot{}).
		Where("id = ?", lotID).
		Update("quantity", quantity).Error
}

func (r *lotRepo) FindByItem(itemID uuid.UUID) ([]model.CostLot, error) {
	var lots []model.CostLot
	err := r.db.Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	return lots, err
}
