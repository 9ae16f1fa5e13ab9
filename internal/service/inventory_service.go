package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"
	"go-retail-erp/internal/ws"
	"go-retail-erp/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// StocktakingRow compares an item's cached stock against its lot ledger.
type StocktakingRow struct {
	Item        model.InventoryItem `json:"item"`
	LotQuantity int                 `json:"lot_quantity"`
	Variance    int                 `json:"variance"` // stock - lot sum; non-zero means drift
	Valuation   decimal.Decimal     `json:"valuation"`
}

type UpdateItemRequest struct {
	SKU             string           `json:"sku" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Category        string           `json:"category"`
	ReorderPoint    int              `json:"reorder_point"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPrice   *decimal.Decimal `json:"discount_price,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	ImageURL        string           `json:"image_url"`
}

type InventoryService interface {
	// CreateItem registers a new item; initial stock seeds an opening
	// lot at the item's original cost so FIFO history starts complete.
	CreateItem(req *model.InventoryItem, actor Actor) error
	// UpdateItem changes metadata and pricing. Stock is deliberately
	// not updatable here: stock only moves through the ledger and the
	// order engine.
	UpdateItem(id uuid.UUID, req *UpdateItemRequest, actor Actor) (*model.InventoryItem, error)
	GetAllItems() ([]model.InventoryItem, error)
	GetItem(id uuid.UUID) (*model.InventoryItem, error)
	GetItemLots(id uuid.UUID) ([]model.CostLot, error)
	Stocktaking() ([]StocktakingRow, error)
	// ExportWorkbook renders the stocktaking view as an xlsx workbook.
	ExportWorkbook() (*excelize.File, error)
}

type inventoryService struct {
	itemRepo repository.ItemRepository
	lotRepo  repository.LotRepository
	ledger   LedgerService
	db       repository.TxRunner
	wsHub    *ws.Hub
	log      *logrus.Logger
}

func NewInventoryService(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	ledger LedgerService,
	db repository.TxRunner,
	hub *ws.Hub,
	log *logrus.Logger,
) InventoryService {
	return &inventoryService{
		itemRepo: itemRepo,
		lotRepo:  lotRepo,
		ledger:   ledger,
		db:       db,
		wsHub:    hub,
		log:      log,
	}
}

func (s *inventoryService) CreateItem(req *model.InventoryItem, actor Actor) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	existing, _ := s.itemRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUExists
	}

	userID := actor.ID.String()
	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.Create(tx, req); err != nil {
			return err
		}
		if req.Stock > 0 {
			if _, err := s.ledger.Replenish(tx, req.ID, req.Stock, req.OriginalCost); err != nil {
				return fmt.Errorf("seed opening lot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcastStock("item_created", actor, req)
	return nil
}

func (s *inventoryService) UpdateItem(id uuid.UUID, req *UpdateItemRequest, actor Actor) (*model.InventoryItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	var updated *model.InventoryItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.itemRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if req.SKU != existing.SKU {
			dup, _ := s.itemRepo.FindBySKU(req.SKU)
			if dup != nil && dup.ID != uuid.Nil && dup.ID != existing.ID {
				return ErrSKUExists
			}
		}

		existing.SKU = req.SKU
		existing.Name = req.Name
		existing.Category = req.Category
		existing.ReorderPoint = req.ReorderPoint
		existing.Price = req.Price
		existing.DiscountPrice = req.DiscountPrice
		existing.DiscountPercent = req.DiscountPercent
		existing.ImageURL = req.ImageURL
		userID := actor.ID.String()
		existing.UpdatedBy = userID
		existing.UpdatedByUserID = &userID

		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("item_updated", actor, updated)
	return updated, nil
}

func (s *inventoryService) GetAllItems() ([]model.InventoryItem, error) {
	return s.itemRepo.FindAll()
}

func (s *inventoryService) GetItem(id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) GetItemLots(id uuid.UUID) ([]model.CostLot, error) {
	return s.lotRepo.FindByItem(id)
}

func (s *inventoryService) Stocktaking() ([]StocktakingRow, error) {
	items, err := s.itemRepo.FindAll()
	if err != nil {
		return nil, err
	}

	rows := make([]StocktakingRow, 0, len(items))
	for _, item := range items {
		lots, err := s.lotRepo.FindByItem(item.ID)
		if err != nil {
			return nil, err
		}
		lotQty := 0
		for _, lot := range lots {
			lotQty += lot.Quantity
		}
		rows = append(rows, StocktakingRow{
			Item:        item,
			LotQuantity: lotQty,
			Variance:    item.Stock - lotQty,
			Valuation:   item.Price.Mul(decimal.NewFromInt(int64(item.Stock))),
		})
	}
	return rows, nil
}

var exportHeaders = []string{"SKU", "Name", "Category", "Stock", "Lot Quantity", "Variance", "Price", "Original Cost", "Valuation"}

func (s *inventoryService) ExportWorkbook() (*excelize.File, error) {
	rows, err := s.Stocktaking()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Item.SKU,
			row.Item.Name,
			row.Item.Category,
			row.Item.Stock,
			row.LotQuantity,
			row.Variance,
			row.Item.Price.InexactFloat64(),
			row.Item.OriginalCost.InexactFloat64(),
			row.Valuation.InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}
	return f, nil
}

func (s *inventoryService) broadcastStock(action string, actor Actor, item *model.InventoryItem) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"item": map[string]interface{}{
				"id":    item.ID,
				"sku":   item.SKU,
				"name":  item.Name,
				"stock": item.Stock,
				"price": item.Price,
			},
			"user": map[string]interface{}{
				"id":   actor.ID,
				"name": actor.Username,
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
