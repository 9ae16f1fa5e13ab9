package repository

import (
	"go-retail-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(tx *gorm.DB, item *model.InventoryItem) error
	FindAll() ([]model.InventoryItem, error)
	FindByID(id uuid.UUID) (*model.InventoryItem, error)
	FindBySKU(sku string) (*model.InventoryItem, error)
	// FindByIDForUpdate locks the item row for the duration of tx.
	// Every lot consume/restore goes through this lock, serialising
	// concurrent operations on the same item.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error)
	Update(item *model.InventoryItem) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	UpdateStockAndCost(tx *gorm.DB, id uuid.UUID, newStock int, originalCost decimal.Decimal, updatedBy string) error
	CountAll() (int64, error)
	CountLowStock() (int64, error)
	TotalValuation() (decimal.Decimal, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(tx *gorm.DB, item *model.InventoryItem) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(item).Error
}

func (r *itemRepo) FindAll() ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "id = ?", id).Error
	return &item, err
}

func (r *itemRepo) FindBySKU(sku string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.First(&item, "sku = ?", sku).Error
	return &item, err
}

func (r *itemRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *itemRepo) Update(item *model.InventoryItem) error {
	return r.db.Save(item).Error
}

// UpdateStock runs inside tx so it shares the caller's row lock
func (r *itemRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *itemRepo) UpdateStockAndCost(tx *gorm.DB, id uuid.UUID, newStock int, originalCost decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":         newStock,
			"original_cost": originalCost,
			"updated_by":    updatedBy,
		}).Error
}

func (r *itemRepo) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.InventoryItem{}).Count(&count).Error
	return count, err
}

func (r *itemRepo) CountLowStock() (int64, error) {
	var count int64
	err := r.db.Model(&model.InventoryItem{}).Where("stock < reorder_point").Count(&count).Error
	return count, err
}

func (r *itemRepo) TotalValuation() (decimal.Decimal, error) {
	var valuation decimal.Decimal
	err := r.db.Model(&model.InventoryItem{}).
		Select("COALESCE(SUM(stock * price), 0)").
		Scan(&valuation).Error
	return valuation, err
}
