package service

import (
	"fmt"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumedPortion records how much was taken from one lot and at what cost.
type ConsumedPortion struct {
	LotID    uuid.UUID       `json:"lot_id"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ConsumeResult is the outcome of a FIFO consumption: the portions taken
// per lot, the shortfall priced at the item's fallback cost, the total
// cost of goods, and the quantity-weighted average unit cost.
type ConsumeResult struct {
	Portions        []ConsumedPortion `json:"portions"`
	Shortfall       int               `json:"shortfall"`
	TotalCost       decimal.Decimal   `json:"total_cost"`
	UnitCostAverage decimal.Decimal   `json:"unit_cost_average"`
}

// LedgerService is the sole mutator of cost-lot quantities. All methods
// run against the caller's transaction and expect the inventory row to
// be locked already, so lot access is serialised per item.
type LedgerService interface {
	// Consume takes quantity units from the item's open lots oldest-first.
	// When lots run out the shortfall is priced at the item's original
	// cost; no negative lot is ever created.
	Consume(tx *gorm.DB, item *model.InventoryItem, quantity int) (*ConsumeResult, error)
	// Replenish appends a new cost lot; every restock is its own layer.
	Replenish(tx *gorm.DB, itemID uuid.UUID, quantity int, unitCost decimal.Decimal) (uuid.UUID, error)
	// RestoreOnCancel returns quantity units to the item's lots as the
	// compensating action for an order cancellation: it merges into an
	// exact-cost match when one exists, otherwise creates a new lot.
	// A zero unit cost means the line predates cost tracking and the
	// item's original cost is used instead.
	RestoreOnCancel(tx *gorm.DB, item *model.InventoryItem, quantity int, unitCost decimal.Decimal) error
}

type ledgerService struct {
	lotRepo repository.LotRepository
}

func NewLedgerService(lotRepo repository.LotRepository) LedgerService {
	return &ledgerService{lotRepo: lotRepo}
}

// planConsumption walks open lots (already ordered oldest-first) and
// greedily assigns portions until the requested quantity is satisfied.
// Pure: it never mutates the lots.
func planConsumption(lots []model.CostLot, quantity int, fallbackCost decimal.Decimal) ConsumeResult {
	remaining := quantity
	result := ConsumeResult{TotalCost: decimal.Zero}

	for i := range lots {
		if remaining <= 0 {
			break
		}
		if lots[i].Quantity <= 0 {
			continue
		}
		take := lots[i].Quantity
		if remaining < take {
			take = remaining
		}
		result.Portions = append(result.Portions, ConsumedPortion{
			LotID:    lots[i].ID,
			Quantity: take,
			UnitCost: lots[i].UnitCost,
		})
		result.TotalCost = result.TotalCost.Add(lots[i].UnitCost.Mul(decimal.NewFromInt(int64(take))))
		remaining -= take
	}

	result.Shortfall = remaining
	if remaining > 0 {
		result.TotalCost = result.TotalCost.Add(fallbackCost.Mul(decimal.NewFromInt(int64(remaining))))
	}
	if quantity > 0 {
		result.UnitCostAverage = result.TotalCost.Div(decimal.NewFromInt(int64(quantity)))
	}
	return result
}

func (s *ledgerService) Consume(tx *gorm.DB, item *model.InventoryItem, quantity int) (*ConsumeResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	lots, err := s.lotRepo.FindOpenByItem(tx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("load open lots: %w", err)
	}

	result := planConsumption(lots, quantity, item.OriginalCost)

	// Apply the decrements; exhausted lots stay at zero rather than
	// being deleted.
	remainingByLot := make(map[uuid.UUID]int, len(lots))
	for _, lot := range lots {
		remainingByLot[lot.ID] = lot.Quantity
	}
	for _, portion := range result.Portions {
		newQty := remainingByLot[portion.LotID] - portion.Quantity
		if err := s.lotRepo.UpdateQuantity(tx, portion.LotID, newQty); err != nil {
			return nil, fmt.Errorf("decrement lot %s: %w", portion.LotID, err)
		}
	}

	return &result, nil
}

func (s *ledgerService) Replenish(tx *gorm.DB, itemID uuid.UUID, quantity int, unitCost decimal.Decimal) (uuid.UUID, error) {
	if quantity <= 0 {
		return uuid.Nil, ErrInvalidQuantity
	}

	lot := &model.CostLot{
		ItemID:   itemID,
		Quantity: quantity,
		UnitCost: unitCost,
	}
	if err := s.lotRepo.Create(tx, lot); err != nil {
		return uuid.Nil, fmt.Errorf("create lot: %w", err)
	}
	return lot.ID, nil
}

func (s *ledgerService) RestoreOnCancel(tx *gorm.DB, item *model.InventoryItem, quantity int, unitCost decimal.Decimal) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitCost.IsZero() {
		unitCost = item.OriginalCost
	}

	existing, err := s.lotRepo.FindByItemAndCost(tx, item.ID, unitCost)
	if err != nil {
		return fmt.Errorf("find matching lot: %w", err)
	}
	if existing != nil {
		return s.lotRepo.UpdateQuantity(tx, existing.ID, existing.Quantity+quantity)
	}

	lot := &model.CostLot{
		ItemID:   item.ID,
		Quantity: quantity,
		UnitCost: unitCost,
	}
	return s.lotRepo.Create(tx, lot)
}
