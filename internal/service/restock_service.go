package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"
	"go-retail-erp/internal/ws"
	"go-retail-erp/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RestockRequest struct {
	ItemID       uuid.UUID         `json:"item_id" validate:"uuid_required"`
	Quantity     int               `json:"quantity" validate:"required,gt=0"`
	UnitCost     decimal.Decimal   `json:"unit_cost"`
	ForeignCost  decimal.Decimal   `json:"foreign_cost"`
	ExchangeRate decimal.Decimal   `json:"exchange_rate"`
	ExtraCosts   []model.CostEntry `json:"extra_costs"`
	RestockDate  string            `json:"restock_date"` // YYYY-MM-DD, empty = today
}

type RestockService interface {
	// Restock appends an audit log and a new cost lot, raises item
	// stock and moves the item's original cost to the new landed unit
	// cost, all in one transaction.
	Restock(req *RestockRequest, actor Actor) (*model.RestockLog, error)
	GetLogs(limit int) ([]model.RestockLog, error)
	SaveTemplate(template *model.RestockTemplate, actor Actor) error
	GetTemplates() ([]model.RestockTemplate, error)
	DeleteTemplate(id uuid.UUID, actor Actor) error
}

type restockService struct {
	restockRepo repository.RestockRepository
	itemRepo    repository.ItemRepository
	ledger      LedgerService
	db          repository.TxRunner
	wsHub       *ws.Hub
	log         *logrus.Logger
}

func NewRestockService(
	restockRepo repository.RestockRepository,
	itemRepo repository.ItemRepository,
	ledger LedgerService,
	db repository.TxRunner,
	hub *ws.Hub,
	log *logrus.Logger,
) RestockService {
	return &restockService{
		restockRepo: restockRepo,
		itemRepo:    itemRepo,
		ledger:      ledger,
		db:          db,
		wsHub:       hub,
		log:         log,
	}
}

func (s *restockService) Restock(req *RestockRequest, actor Actor) (*model.RestockLog, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	restockDate := time.Now()
	if req.RestockDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RestockDate)
		if err != nil {
			return nil, errors.New("invalid restock_date format, use YYYY-MM-DD")
		}
		restockDate = parsed
	}

	var logEntry *model.RestockLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.FindByIDForUpdate(tx, req.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		logEntry = &model.RestockLog{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Quantity:     req.Quantity,
			UnitCost:     req.UnitCost,
			ForeignCost:  req.ForeignCost,
			ExchangeRate: req.ExchangeRate,
			ExtraCosts:   req.ExtraCosts,
			RestockDate:  restockDate,
		}
		logEntry.CreatedBy = actor.ID.String()
		if err := s.restockRepo.CreateLog(tx, logEntry); err != nil {
			return fmt.Errorf("write restock log: %w", err)
		}

		if _, err := s.ledger.Replenish(tx, item.ID, req.Quantity, req.UnitCost); err != nil {
			return err
		}

		return s.itemRepo.UpdateStockAndCost(tx, item.ID, item.Stock+req.Quantity, req.UnitCost, actor.ID.String())
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		go func() {
			payload := map[string]interface{}{
				"type":   "stock_update",
				"action": "restocked",
				"restock": map[string]interface{}{
					"item_id":   logEntry.ItemID,
					"item_name": logEntry.ItemName,
					"quantity":  logEntry.Quantity,
					"unit_cost": logEntry.UnitCost,
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
	return logEntry, nil
}

func (s *restockService) GetLogs(limit int) ([]model.RestockLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.restockRepo.FindLogs(limit)
}

func (s *restockService) SaveTemplate(template *model.RestockTemplate, actor Actor) error {
	if errs := validator.ValidateStruct(template); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	template.CreatedBy = actor.ID.String()
	return s.restockRepo.CreateTemplate(template)
}

func (s *restockService) GetTemplates() ([]model.RestockTemplate, error) {
	return s.restockRepo.FindTemplates()
}

func (s *restockService) DeleteTemplate(id uuid.UUID, actor Actor) error {
	s.log.WithFields(logrus.Fields{"template_id": id, "user": actor.Username}).Info("deleting restock template")
	return s.restockRepo.DeleteTemplate(id)
}
